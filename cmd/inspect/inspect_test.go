package inspect

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/gradefill/internal/docx/docxtest"
	"fjacquet/gradefill/internal/filler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	m := filler.DefaultMarkers()
	dir := t.TempDir()

	complete := filepath.Join(dir, "complete.docx")
	docxtest.Write(t, complete, docxtest.Table(docxtest.Row(docxtest.Cell(
		docxtest.P(m.GradeMarker),
		docxtest.P(m.Hint),
		docxtest.P(m.SignatureLabel),
		docxtest.P(m.DateBlank),
	))))

	partial := filepath.Join(dir, "partial.docx")
	docxtest.Write(t, partial, docxtest.Table(docxtest.Row(docxtest.Cell(
		docxtest.P(m.GradeMarker),
		docxtest.P("评语已写"),
	))))

	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "complete template",
			path: complete,
			want: []string{"Report: " + complete, "grade marker:    yes", "hint:            yes", "drawings:        0", "Fillable: yes"},
		},
		{
			name: "missing blanks",
			path: partial,
			want: []string{"signature label: no", "Fillable: no (missing signature, comment)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Run(m, tt.path, false, &out))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_WithText(t *testing.T) {
	m := filler.DefaultMarkers()
	path := filepath.Join(t.TempDir(), "r.docx")
	docxtest.Write(t, path,
		docxtest.P("实习报告"),
		docxtest.Table(docxtest.Row(docxtest.Cell(docxtest.P(m.SignatureLabel)))))

	var out bytes.Buffer
	require.NoError(t, Run(m, path, true, &out))
	assert.Contains(t, out.String(), "Text:\n  \"实习报告\"\n  \"指导教师手写签名：\"\n")

	out.Reset()
	require.NoError(t, Run(m, path, false, &out))
	assert.NotContains(t, out.String(), "Text:")
}

func TestRun_Errors(t *testing.T) {
	m := filler.DefaultMarkers()
	dir := t.TempDir()

	assert.ErrorContains(t, Run(m, "", false, &bytes.Buffer{}), "--report is required")

	doc := filepath.Join(dir, "张三.doc")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o600))
	assert.ErrorContains(t, Run(m, doc, false, &bytes.Buffer{}), "convert it first")

	broken := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o600))
	assert.Error(t, Run(m, broken, false, &bytes.Buffer{}))
}
