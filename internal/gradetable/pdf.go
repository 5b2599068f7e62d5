package gradetable

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor rebuilds tables from the text layer of a PDF. Fragments are
// grouped into rows by baseline; a row is cut into cells along the page's
// vertical rulings when it has any, otherwise along horizontal gaps.
// Image-only (scanned without OCR) pages yield no rows.
type PDFExtractor struct {
	rowTolerance float64
	cellGap      float64
	logger       logging.Logger
}

// NewPDFExtractor creates an extractor. rowTolerance is the maximum baseline
// difference (in points) within one row; cellGap the minimum horizontal gap
// that starts a new cell when the page has no rulings.
func NewPDFExtractor(rowTolerance, cellGap float64, logger logging.Logger) *PDFExtractor {
	if rowTolerance <= 0 {
		rowTolerance = 3
	}
	if cellGap <= 0 {
		cellGap = 8
	}
	return &PDFExtractor{rowTolerance: rowTolerance, cellGap: cellGap, logger: logger}
}

func (e *PDFExtractor) Name() string { return BackendPDF }

// ExtractTables returns one table per page that has text.
func (e *PDFExtractor) ExtractTables(ctx context.Context, path string) ([]Table, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close PDF", logging.F(logging.FieldFile, path))
		}
	}()

	var tables []Table
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		fragments, rules, err := readPage(page)
		if err != nil {
			return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Page: i, Err: err}
		}

		table := e.layoutTable(fragments, rules)
		e.logger.Debug("Extracted page table",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldPage, i),
			logging.F(logging.FieldCount, len(table)))
		if len(table) > 0 {
			tables = append(tables, table)
		}
	}

	return tables, nil
}

// fragment is a positioned piece of text; rule a drawn rectangle.
type fragment struct {
	X, Y, W, Size float64
	S             string
}

type rule struct {
	MinX, MinY, MaxX, MaxY float64
}

// maxCellHeight bounds the rectangles treated as table cells; taller ones are
// frames or backgrounds.
const maxCellHeight = 72.0

// readPage converts the page content, turning the reader's panics on
// malformed content streams into errors.
func readPage(page pdf.Page) (frags []fragment, rules []rule, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	content := page.Content()
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		frags = append(frags, fragment{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	for _, r := range content.Rect {
		// Rectangles drawn with a negative width or height come out inverted.
		rules = append(rules, rule{
			MinX: math.Min(r.Min.X, r.Max.X),
			MinY: math.Min(r.Min.Y, r.Max.Y),
			MaxX: math.Max(r.Min.X, r.Max.X),
			MaxY: math.Max(r.Min.Y, r.Max.Y),
		})
	}
	return frags, rules, nil
}

func (e *PDFExtractor) layoutTable(frags []fragment, rules []rule) Table {
	rows := groupRows(frags, e.rowTolerance)
	bounds := columnBounds(rules, e.rowTolerance)

	var table Table
	for _, row := range rows {
		var cells []string
		if len(bounds) >= 2 {
			cells = cellsByBounds(row, bounds)
		} else {
			cells = cellsByGap(row, e.cellGap)
		}
		if len(cells) > 0 {
			table = append(table, cells)
		}
	}
	return table
}

// groupRows sorts fragments top to bottom (PDF y grows upwards) and starts a
// new row whenever the baseline moves by more than tol.
func groupRows(frags []fragment, tol float64) [][]fragment {
	if len(frags) == 0 {
		return nil
	}
	sorted := make([]fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]fragment
	var current []fragment
	rowY := sorted[0].Y
	for _, f := range sorted {
		if len(current) > 0 && math.Abs(f.Y-rowY) > tol {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			rowY = f.Y
		}
		current = append(current, f)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// columnBounds collects the x positions of vertical rulings: thin rectangles
// taller than a row, and the sides of cell-sized rectangles. Positions closer
// than one point are merged.
func columnBounds(rules []rule, rowTol float64) []float64 {
	var xs []float64
	for _, r := range rules {
		w, h := r.MaxX-r.MinX, r.MaxY-r.MinY
		switch {
		case w <= 2 && h >= 2*rowTol:
			xs = append(xs, (r.MinX+r.MaxX)/2)
		case w > 2 && h > 2 && h <= maxCellHeight:
			xs = append(xs, r.MinX, r.MaxX)
		}
	}
	if len(xs) == 0 {
		return nil
	}
	sort.Float64s(xs)

	bounds := []float64{xs[0]}
	for _, x := range xs[1:] {
		if x-bounds[len(bounds)-1] > 1 {
			bounds = append(bounds, x)
		}
	}
	return bounds
}

// cellsByBounds assigns each fragment to the column interval holding its
// centre. Rows with no fragment inside the grid are dropped.
func cellsByBounds(row []fragment, bounds []float64) []string {
	cols := make([][]fragment, len(bounds)-1)
	inside := false
	for _, f := range row {
		center := f.X + f.W/2
		k := sort.SearchFloat64s(bounds, center) - 1
		if k < 0 || k >= len(cols) {
			continue
		}
		cols[k] = append(cols[k], f)
		inside = true
	}
	if !inside {
		return nil
	}

	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = joinFragments(col)
	}
	return cells
}

// cellsByGap starts a new cell whenever the horizontal gap between two
// consecutive fragments is at least gap points.
func cellsByGap(row []fragment, gap float64) []string {
	var cells []string
	var current []fragment
	for _, f := range row {
		if len(current) > 0 {
			prev := current[len(current)-1]
			if f.X-(prev.X+prev.W) >= gap {
				cells = append(cells, joinFragments(current))
				current = nil
			}
		}
		current = append(current, f)
	}
	if len(current) > 0 {
		cells = append(cells, joinFragments(current))
	}
	return cells
}

// joinFragments concatenates fragments, inserting a space where the gap
// exceeds a quarter of the font size.
func joinFragments(frags []fragment) string {
	var b strings.Builder
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			if f.X-(prev.X+prev.W) > f.Size/4 && f.Size > 0 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f.S)
	}
	return strings.TrimSpace(b.String())
}
