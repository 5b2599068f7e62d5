// Package gradeerror defines the typed errors returned while extracting
// grade tables and filling reports.
package gradeerror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when no extractor handles a file type.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError is returned when a grade table cannot be read.
type ExtractionError struct {
	Backend string
	Path    string
	Page    int // 0 when the failure is not tied to a page
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s: failed to extract tables from '%s' (page %d): %v",
			e.Backend, e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: failed to extract tables from '%s': %v", e.Backend, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InvalidFormatError is returned when an input file does not have the
// expected format.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// ValidationError represents a validation failure of a path or a setting.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// ConversionError is returned when a .doc report cannot be turned into .docx.
type ConversionError struct {
	Path     string
	Attempts uint
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of '%s' failed after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// FillError is returned when a report could not be completely filled. Missing
// lists the blanks that were not found.
type FillError struct {
	Report  string
	Missing []string
	Err     error
}

func (e *FillError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fill report '%s': %v", e.Report, e.Err)
	}
	return fmt.Sprintf("report '%s' is incomplete: missing %s", e.Report, strings.Join(e.Missing, ", "))
}

func (e *FillError) Unwrap() error {
	return e.Err
}

// IsIncomplete reports whether err is a FillError caused by missing blanks
// rather than by an I/O or conversion failure.
func IsIncomplete(err error) bool {
	var fe *FillError
	return errors.As(err, &fe) && fe.Err == nil && len(fe.Missing) > 0
}
