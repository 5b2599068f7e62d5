package gradetable

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphs lays out one fragment per rune of s starting at x, 10pt wide each.
func glyphs(s string, x, y float64) []fragment {
	var out []fragment
	for _, r := range s {
		out = append(out, fragment{X: x, Y: y, W: 10, Size: 10, S: string(r)})
		x += 10
	}
	return out
}

func concat(parts ...[]fragment) []fragment {
	var out []fragment
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestGroupRows(t *testing.T) {
	frags := concat(
		glyphs("张三", 100, 700.4),
		glyphs("学号", 20, 720),
		glyphs("2021001", 20, 699.5),
	)

	rows := groupRows(frags, 3)

	require.Len(t, rows, 2)
	assert.Equal(t, "学", rows[0][0].S, "top row first")
	assert.Equal(t, "2", rows[1][0].S, "fragments sorted by x within a row")
	assert.Len(t, rows[1], 9)
	assert.Nil(t, groupRows(nil, 3))
}

func TestCellsByGap(t *testing.T) {
	row := concat(
		glyphs("2021001", 20, 700),
		glyphs("张三", 120, 700),
		glyphs("85", 200, 700),
	)

	assert.Equal(t, []string{"2021001", "张三", "85"}, cellsByGap(row, 8))
	assert.Equal(t, []string{"2021001 张三 85"}, cellsByGap(row, 100), "no gap wide enough")
}

func TestJoinFragments_InsertsSpaces(t *testing.T) {
	frags := concat(glyphs("Li", 0, 0), glyphs("Lei", 25, 0))
	assert.Equal(t, "Li Lei", joinFragments(frags))
	assert.Equal(t, "", joinFragments(nil))
}

func TestColumnBoundsAndCells(t *testing.T) {
	rules := []rule{
		// vertical rulings
		{MinX: 10, MinY: 600, MaxX: 10.5, MaxY: 740},
		{MinX: 100, MinY: 600, MaxX: 100.5, MaxY: 740},
		{MinX: 180, MinY: 600, MaxX: 180.5, MaxY: 740},
		// a cell rectangle sharing the right edge of the last column
		{MinX: 180, MinY: 690, MaxX: 260, MaxY: 710},
		// a page frame, ignored
		{MinX: 0, MinY: 0, MaxX: 595, MaxY: 842},
	}

	bounds := columnBounds(rules, 3)
	assert.Equal(t, []float64{10.25, 100.25, 180, 260}, bounds)

	row := concat(glyphs("2021001", 20, 700), glyphs("85", 200, 700))
	assert.Equal(t, []string{"2021001", "", "85"}, cellsByBounds(row, bounds))

	outside := glyphs("页脚", 300, 100)
	assert.Nil(t, cellsByBounds(outside, bounds))
}

func TestLayoutTable(t *testing.T) {
	e := NewPDFExtractor(3, 8, logging.NewMockLogger())
	frags := concat(
		glyphs("学号", 20, 720), glyphs("姓名", 120, 720), glyphs("实习报告", 200, 720),
		glyphs("2021001", 20, 700), glyphs("张三", 120, 700), glyphs("85", 200, 700),
	)

	table := e.layoutTable(frags, nil)

	assert.Equal(t, Table{
		{"学号", "姓名", "实习报告"},
		{"2021001", "张三", "85"},
	}, table)

	result := ParseGrades([]Table{table}, DefaultKeywords, logging.NewMockLogger())
	require.Len(t, result.Records, 1)
	assert.Equal(t, "张三", result.Records[0].Name)
}

func TestPDFExtractor_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.pdf")
	require.NoError(t, os.WriteFile(path, []byte("This is not a PDF file"), 0o600))

	e := NewPDFExtractor(0, 0, logging.NewMockLogger())
	_, err := e.ExtractTables(context.Background(), path)

	var extractionErr *gradeerror.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, BackendPDF, extractionErr.Backend)
}

// writePDF writes a single-page PDF whose content stream is content, with
// Helvetica available as /F1.
func writePDF(t *testing.T, content string) string {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "grades.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// textAt shows s at (x, y) in its own text object.
func textAt(x, y float64, s string) string {
	return fmt.Sprintf("BT /F1 10 Tf %g %g Td (%s) Tj ET\n", x, y, s)
}

var pdfKeywords = Keywords{StudentID: "ID", Name: "Name", Grade: "Report"}

func TestPDFExtractor_ExtractTables(t *testing.T) {
	var content string
	for i, row := range [][]string{
		{"ID", "Name", "Report"},
		{"2021001", "Zhang", "85"},
		{"2021002", "Li", "92"},
	} {
		y := 700 - 20*float64(i)
		content += textAt(50, y, row[0]) + textAt(150, y, row[1]) + textAt(250, y, row[2])
	}
	path := writePDF(t, content)

	e := NewPDFExtractor(0, 0, logging.NewMockLogger())
	tables, err := e.ExtractTables(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []Table{{
		{"ID", "Name", "Report"},
		{"2021001", "Zhang", "85"},
		{"2021002", "Li", "92"},
	}}, tables)

	result := ParseGrades(tables, pdfKeywords, logging.NewMockLogger())
	require.Len(t, result.Records, 2)
	assert.Equal(t, "2021001", result.Records[0].StudentID)
	assert.Equal(t, "Zhang", result.Records[0].Name)
	assert.Equal(t, "85", result.Records[0].Grade)
	assert.True(t, result.Records[0].Score.Equal(decimal.NewFromInt(85)))
	assert.Equal(t, "Li", result.Records[1].Name)
}

func TestPDFExtractor_ExtractTables_Rulings(t *testing.T) {
	// Cells of a 3-column grid, 100pt wide and 20pt high; the first cell of
	// each row is drawn with a negative height. Text sits 7pt apart across
	// the first column boundary, too close for gap splitting.
	var content string
	rows := [][]string{
		{"ID", "Name", "Report"},
		{"2021001", "Zhang", "85"},
		{"2021002", "Li", "92"},
	}
	for i, row := range rows {
		top := 720 - 20*float64(i)
		content += fmt.Sprintf("50 %g 100 -20 re S\n", top)
		content += fmt.Sprintf("150 %g 100 20 re S\n", top-20)
		content += fmt.Sprintf("250 %g 100 20 re S\n", top-20)
		y := top - 15
		content += textAt(145, y, row[0]) + textAt(152, y, row[1]) + textAt(255, y, row[2])
	}
	// a title above the grid falls outside every column
	content += textAt(400, 760, "Grades")
	path := writePDF(t, content)

	e := NewPDFExtractor(0, 0, logging.NewMockLogger())
	tables, err := e.ExtractTables(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []Table{{
		{"ID", "Name", "Report"},
		{"2021001", "Zhang", "85"},
		{"2021002", "Li", "92"},
	}}, tables)

	result := ParseGrades(tables, pdfKeywords, logging.NewMockLogger())
	require.Len(t, result.Records, 2)
	assert.Equal(t, "2021002", result.Records[1].StudentID)
	assert.Equal(t, "92", result.Records[1].Grade)
}

func TestPDFExtractor_MalformedContent(t *testing.T) {
	// "re" with a missing operand makes the content interpreter panic
	path := writePDF(t, "50 700 100 re S\n"+textAt(50, 700, "ID"))

	e := NewPDFExtractor(0, 0, logging.NewMockLogger())
	_, err := e.ExtractTables(context.Background(), path)

	var extractionErr *gradeerror.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 1, extractionErr.Page)
	assert.Contains(t, err.Error(), "malformed page content")
}
