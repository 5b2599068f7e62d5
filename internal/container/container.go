// Package container provides dependency injection for the gradefill application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/gradefill/internal/batch"
	"fjacquet/gradefill/internal/config"
	"fjacquet/gradefill/internal/docconv"
	"fjacquet/gradefill/internal/docx"
	"fjacquet/gradefill/internal/filler"
	"fjacquet/gradefill/internal/gradetable"
	"fjacquet/gradefill/internal/grading"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/matcher"
	"fjacquet/gradefill/internal/report"

	"github.com/shopspring/decimal"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; dependencies are only reachable
// through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	gemini    *grading.GeminiClient
	commenter grading.Commenter
	converter *docconv.LibreOfficeConverter
	filler    *filler.Filler
	runner    *batch.Runner
	reporter  *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{logger: logger, config: cfg}

	bands := NewBandCommenter(cfg)
	c.commenter = bands
	if cfg.AI.Enabled {
		gemini, err := grading.NewGeminiClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			logger.WithError(err).Warn("AI comments unavailable, using comment bands")
		} else {
			c.gemini = gemini
			c.commenter = grading.NewAICommenter(gemini, bands,
				time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		}
	}

	c.converter = docconv.NewLibreOfficeConverter(docconv.Options{
		Binary:   cfg.Conversion.Binary,
		Attempts: cfg.Conversion.Attempts,
		Delay:    time.Duration(cfg.Conversion.DelaySeconds) * time.Second,
		Timeout:  time.Duration(cfg.Conversion.TimeoutSeconds) * time.Second,
	}, logger)

	markers := Markers(cfg)
	c.filler = filler.New(markers, docx.Inches(cfg.Signature.WidthInches), c.commenter, c.converter, logger)

	extractorOpts := gradetable.Options{
		PDFBackend:   cfg.Grades.Backend,
		RowTolerance: cfg.Grades.RowTolerance,
		CellGap:      cfg.Grades.CellGap,
		Sheet:        cfg.Grades.Sheet,
	}
	c.runner = batch.NewRunner(batch.Dependencies{
		Extractors: func(path string) (gradetable.TableExtractor, error) {
			return gradetable.ExtractorFor(path, extractorOpts, logger)
		},
		Keywords: gradetable.Keywords{
			StudentID: cfg.Grades.Keywords.StudentID,
			Name:      cfg.Grades.Keywords.Name,
			Grade:     cfg.Grades.Keywords.Grade,
		},
		Matcher:    matcher.New(cfg.Matching.Fuzzy, logger),
		Extensions: cfg.Matching.Extensions,
		Filler:     c.filler,
		Markers:    markers,
		Logger:     logger,
	})

	c.reporter = report.NewReportGenerator([]rune(cfg.Report.Delimiter)[0], logger)

	logger.Debug("Container initialized",
		logging.F("commenter", c.commenter.Name()),
		logging.F(logging.FieldBackend, cfg.Grades.Backend))
	return c, nil
}

// NewBandCommenter builds the band commenter from the configured bands.
func NewBandCommenter(cfg *config.Config) *grading.BandCommenter {
	bands := make([]grading.Band, 0, len(cfg.Comments.Bands))
	for _, b := range cfg.Comments.Bands {
		bands = append(bands, grading.Band{
			Min:          decimal.NewFromFloat(b.Min),
			Max:          decimal.NewFromFloat(b.Max),
			MinExclusive: b.MinExclusive,
			Text:         b.Text,
		})
	}
	return grading.NewBandCommenter(bands)
}

// Markers returns the configured template markers.
func Markers(cfg *config.Config) filler.Markers {
	return filler.Markers{
		GradeMarker:    cfg.Template.GradeMarker,
		GradeFormat:    cfg.Template.GradeFormat,
		SignatureLabel: cfg.Template.SignatureLabel,
		Hint:           cfg.Template.Hint,
		DateBlank:      cfg.Template.DateBlank,
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCommenter returns the comment generator.
func (c *Container) GetCommenter() grading.Commenter {
	return c.commenter
}

// GetConverter returns the .doc converter.
func (c *Container) GetConverter() *docconv.LibreOfficeConverter {
	return c.converter
}

// GetFiller returns the report filler.
func (c *Container) GetFiller() *filler.Filler {
	return c.filler
}

// GetRunner returns the batch runner.
func (c *Container) GetRunner() *batch.Runner {
	return c.runner
}

// GetReportGenerator returns the summary renderer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reporter
}

// Close releases the AI client, if any.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			return fmt.Errorf("failed to close Gemini client: %w", err)
		}
	}
	return nil
}
