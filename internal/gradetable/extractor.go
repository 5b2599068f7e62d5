// Package gradetable reads grade tables out of PDF, XLSX and CSV files and
// turns them into grade records keyed by header keywords.
package gradetable

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"
)

// Table is an ordered list of rows, each an ordered list of cell texts.
type Table [][]string

// TableExtractor pulls every table out of a file. Tables are returned in
// document order (page by page, sheet by sheet).
type TableExtractor interface {
	// Name identifies the backend in logs and errors.
	Name() string
	ExtractTables(ctx context.Context, path string) ([]Table, error)
}

// Backend names accepted by ExtractorFor.
const (
	BackendPDF       = "pdf"
	BackendPdftotext = "pdftotext"
	BackendXLSX      = "xlsx"
	BackendCSV       = "csv"
)

// Options configures extractor construction.
type Options struct {
	// PDFBackend is BackendPDF or BackendPdftotext.
	PDFBackend   string
	RowTolerance float64
	CellGap      float64
	// Sheet restricts XLSX extraction to one sheet; empty means all sheets.
	Sheet string
}

// ExtractorFor picks an extractor from the file extension.
func ExtractorFor(path string, opts Options, logger logging.Logger) (TableExtractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if opts.PDFBackend == BackendPdftotext {
			return NewPdftotextExtractor(logger), nil
		}
		return NewPDFExtractor(opts.RowTolerance, opts.CellGap, logger), nil
	case ".xlsx", ".xlsm":
		return NewXLSXExtractor(opts.Sheet, logger), nil
	case ".csv":
		return NewCSVExtractor(logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", gradeerror.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// MockExtractor returns canned tables; it is used by tests of the packages
// that consume extractors.
type MockExtractor struct {
	Tables []Table
	Err    error
	Calls  []string
}

func (m *MockExtractor) Name() string { return "mock" }

func (m *MockExtractor) ExtractTables(_ context.Context, path string) ([]Table, error) {
	m.Calls = append(m.Calls, path)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tables, nil
}
