// Package docconv turns legacy .doc reports into .docx with LibreOffice.
package docconv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/logging"

	"github.com/avast/retry-go/v4"
)

// Converter converts one .doc file and returns the path of the .docx.
type Converter interface {
	Convert(ctx context.Context, docPath string) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() // #nosec G204 -- binary comes from configuration
}

// Options tune the LibreOffice invocation.
type Options struct {
	Binary   string
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

// LibreOfficeConverter runs `soffice --headless --convert-to docx`. Parallel
// LibreOffice instances fight over the user profile lock, so failed runs are
// retried after a delay.
type LibreOfficeConverter struct {
	opts   Options
	exec   executor
	logger logging.Logger
}

// NewLibreOfficeConverter creates a converter with the given options.
func NewLibreOfficeConverter(opts Options, logger logging.Logger) *LibreOfficeConverter {
	return newLibreOfficeConverter(opts, osExecutor{}, logger)
}

func newLibreOfficeConverter(opts Options, exec executor, logger logging.Logger) *LibreOfficeConverter {
	if opts.Binary == "" {
		opts.Binary = "soffice"
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	return &LibreOfficeConverter{opts: opts, exec: exec, logger: logger}
}

// Available reports an error when the LibreOffice binary is not on PATH.
func (c *LibreOfficeConverter) Available() error {
	if _, err := c.exec.LookPath(c.opts.Binary); err != nil {
		return fmt.Errorf("%s not found: %w", c.opts.Binary, err)
	}
	return nil
}

// Convert writes the .docx next to docPath and removes docPath.
func (c *LibreOfficeConverter) Convert(ctx context.Context, docPath string) (string, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", docPath, err)
	}
	if !fileutils.FileExists(abs) {
		return "", &gradeerror.ValidationError{FilePath: abs, Reason: "file does not exist"}
	}

	out := fileutils.ReplaceExtension(abs, ".docx")
	args := []string{"--headless", "--convert-to", "docx", "--outdir", filepath.Dir(abs), abs}

	c.logger.Info("Converting report",
		logging.F(logging.FieldInputFile, abs),
		logging.F(logging.FieldOutputFile, out))

	var attempts uint
	err = retry.Do(func() error {
		attempts++
		runCtx := ctx
		if c.opts.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
			defer cancel()
		}

		output, err := c.exec.Run(runCtx, c.opts.Binary, args...)
		if err != nil {
			return fmt.Errorf("%s: %w: %s", c.opts.Binary, err, strings.TrimSpace(string(output)))
		}
		if !fileutils.FileExists(out) {
			return fmt.Errorf("%s did not produce %s: %s", c.opts.Binary, filepath.Base(out), strings.TrimSpace(string(output)))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.opts.Attempts),
		retry.Delay(c.opts.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithError(err).Warn("Conversion attempt failed",
				logging.F(logging.FieldAttempt, n+1),
				logging.F(logging.FieldInputFile, abs))
		}),
	)
	if err != nil {
		return "", &gradeerror.ConversionError{Path: abs, Attempts: attempts, Err: err}
	}

	if err := os.Remove(abs); err != nil {
		c.logger.WithError(err).Warn("Failed to remove converted .doc",
			logging.F(logging.FieldInputFile, abs))
	}
	return out, nil
}

// ConvertDirectory converts every .doc directly inside dir. It returns the
// produced .docx paths and the files that failed, keyed by .doc path.
func ConvertDirectory(ctx context.Context, conv Converter, dir string, logger logging.Logger) ([]string, map[string]error, error) {
	names, err := fileutils.ListFilesWithSuffix(dir, ".doc")
	if err != nil {
		return nil, nil, err
	}

	var converted []string
	failed := make(map[string]error)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return converted, failed, err
		}
		out, err := conv.Convert(ctx, filepath.Join(dir, name))
		if err != nil {
			logger.WithError(err).Error("Conversion failed", logging.F(logging.FieldFile, name))
			failed[name] = err
			continue
		}
		converted = append(converted, out)
	}
	return converted, failed, nil
}

// MockConverter is a Converter for tests. Unless Err is set it renames the
// input to .docx, so a fixture written under a .doc name stays readable.
type MockConverter struct {
	Err   error
	Calls []string
}

// Convert records the call and renames docPath to .docx.
func (m *MockConverter) Convert(_ context.Context, docPath string) (string, error) {
	m.Calls = append(m.Calls, docPath)
	if m.Err != nil {
		return "", m.Err
	}
	out := fileutils.ReplaceExtension(docPath, ".docx")
	if err := os.Rename(docPath, out); err != nil {
		return "", err
	}
	return out, nil
}
