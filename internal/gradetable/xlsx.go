package gradetable

import (
	"context"
	"fmt"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads grade tables exported as spreadsheets; every sheet is
// one table.
type XLSXExtractor struct {
	sheet  string
	logger logging.Logger
}

// NewXLSXExtractor creates an extractor limited to sheet, or reading all
// sheets when sheet is empty.
func NewXLSXExtractor(sheet string, logger logging.Logger) *XLSXExtractor {
	return &XLSXExtractor{sheet: sheet, logger: logger}
}

func (e *XLSXExtractor) Name() string { return BackendXLSX }

func (e *XLSXExtractor) ExtractTables(ctx context.Context, path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close workbook", logging.F(logging.FieldFile, path))
		}
	}()

	sheets := f.GetSheetList()
	if e.sheet != "" {
		if idx, err := f.GetSheetIndex(e.sheet); err != nil || idx < 0 {
			return nil, &gradeerror.ExtractionError{
				Backend: e.Name(), Path: path,
				Err: fmt.Errorf("sheet %q not found", e.sheet),
			}
		}
		sheets = []string{e.sheet}
	}

	var tables []Table
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &gradeerror.ExtractionError{
				Backend: e.Name(), Path: path,
				Err: fmt.Errorf("failed to read sheet %s: %w", sheet, err),
			}
		}
		e.logger.Debug("Read sheet",
			logging.F(logging.FieldFile, path),
			logging.F("sheet", sheet),
			logging.F(logging.FieldCount, len(rows)))
		if len(rows) > 0 {
			tables = append(tables, Table(rows))
		}
	}
	return tables, nil
}
