package gradetable

import (
	"context"
	"encoding/csv"
	"os"
	"strings"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"

	"github.com/gocarina/gocsv"
)

const utf8BOM = "\ufeff"

// CSVExtractor reads a grade table exported as CSV. Header names vary
// between exports, so rows are read raw and mapped by keyword later.
type CSVExtractor struct {
	logger logging.Logger
}

func NewCSVExtractor(logger logging.Logger) *CSVExtractor {
	return &CSVExtractor{logger: logger}
}

func (e *CSVExtractor) Name() string { return BackendCSV }

func (e *CSVExtractor) ExtractTables(_ context.Context, path string) ([]Table, error) {
	file, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close CSV file", logging.F(logging.FieldFile, path))
		}
	}()

	reader := gocsv.LazyCSVReader(file)
	if r, ok := reader.(*csv.Reader); ok {
		r.FieldsPerRecord = -1
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return []Table{rows}, nil
}
