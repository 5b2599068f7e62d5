// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"fmt"
	"io"
	"os"

	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/logging"
)

// ErrReportsFailed is returned by commands after a run in which at least one
// report could not be filled; main turns it into exit status 1.
var ErrReportsFailed = errors.New("some reports could not be filled")

// RequireFile checks that the flag value names an existing file.
func RequireFile(flag, path string) error {
	if path == "" {
		return fmt.Errorf("--%s is required", flag)
	}
	if !fileutils.FileExists(path) {
		return fmt.Errorf("--%s: file not found: %s", flag, path)
	}
	return nil
}

// RequireDirectory checks that the flag value names an existing directory.
func RequireDirectory(flag, path string) error {
	if path == "" {
		return fmt.Errorf("--%s is required", flag)
	}
	if !fileutils.DirectoryExists(path) {
		return fmt.Errorf("--%s: directory not found: %s", flag, path)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput returns a writer for path, or stdout when path is empty.
func OpenOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path) // #nosec G304 -- output path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, nil
}

// CloseOutput closes w and logs a failure.
func CloseOutput(w io.Closer, log logging.Logger) {
	if err := w.Close(); err != nil {
		log.WithError(err).Warn("Failed to close output")
	}
}
