package gradetable

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/textutils"
)

// commandRunner runs an external command and returns its stdout.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// PdftotextExtractor runs poppler's `pdftotext -layout` and splits each
// layout line into cells on runs of two or more spaces. It copes with PDFs
// whose text layer the native reader cannot decode.
type PdftotextExtractor struct {
	run    commandRunner
	logger logging.Logger
}

// NewPdftotextExtractor creates an extractor that requires pdftotext on PATH.
func NewPdftotextExtractor(logger logging.Logger) *PdftotextExtractor {
	return &PdftotextExtractor{run: runCommand, logger: logger}
}

func (e *PdftotextExtractor) Name() string { return BackendPdftotext }

// ExtractTables returns one table per page (pages are separated by form feeds).
func (e *PdftotextExtractor) ExtractTables(ctx context.Context, path string) ([]Table, error) {
	out, err := e.run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, &gradeerror.ExtractionError{Backend: e.Name(), Path: path, Err: err}
	}

	tables := parseLayoutText(string(out))
	e.logger.Debug("Extracted layout text",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(tables)))
	return tables, nil
}

func parseLayoutText(text string) []Table {
	var tables []Table
	for _, page := range strings.Split(text, "\f") {
		var table Table
		for _, line := range strings.Split(page, "\n") {
			if cells := textutils.SplitColumns(line); len(cells) > 0 {
				table = append(table, cells)
			}
		}
		if len(table) > 0 {
			tables = append(tables, table)
		}
	}
	return tables
}
