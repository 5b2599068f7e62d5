// Package batch runs a complete fill: grade table in, filled reports out.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/gradefill/internal/dateutils"
	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/filler"
	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/gradetable"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/matcher"
	"fjacquet/gradefill/internal/models"

	"github.com/google/uuid"
)

// ExtractorFactory returns the extractor able to read the grade table at path.
type ExtractorFactory func(path string) (gradetable.TableExtractor, error)

// ReportFiller fills one report; *filler.Filler implements it.
type ReportFiller interface {
	Fill(ctx context.Context, req filler.Request, dryRun bool) (*filler.Result, error)
}

// Options describe one run.
type Options struct {
	GradesPath    string
	ReportsDir    string
	SignaturePath string
	// Date is written into the date blank; zero means today.
	Date   time.Time
	DryRun bool
	// Validate checks every matched .docx template before filling.
	Validate bool
}

// Dependencies are the collaborators of a Runner.
type Dependencies struct {
	Extractors ExtractorFactory
	Keywords   gradetable.Keywords
	Matcher    *matcher.Matcher
	Extensions []string
	Filler     ReportFiller
	Markers    filler.Markers
	Logger     logging.Logger
	Clock      dateutils.Clock
}

// Runner executes fill runs.
type Runner struct {
	deps Dependencies
}

// NewRunner creates a Runner.
func NewRunner(deps Dependencies) *Runner {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if len(deps.Extensions) == 0 {
		deps.Extensions = []string{".doc", ".docx"}
	}
	return &Runner{deps: deps}
}

// Run extracts the grades, matches them to the reports in opts.ReportsDir
// and fills every matched report. A failing report never stops the run; it
// is listed in Summary.FailedReports. The returned error is reserved for
// problems that prevent the run as a whole.
func (r *Runner) Run(ctx context.Context, opts Options) (*models.Summary, error) {
	summary := &models.Summary{
		RunID:     uuid.New().String(),
		StartedAt: r.deps.Clock(),
	}
	logger := r.deps.Logger.WithField(logging.FieldRunID, summary.RunID)

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	records, err := r.extract(ctx, opts.GradesPath, logger)
	if err != nil {
		return nil, err
	}
	summary.Records = records

	reports, err := matcher.ListReports(opts.ReportsDir, r.deps.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Info("Found reports", logging.F(logging.FieldCount, len(reports)))

	plan := r.deps.Matcher.Match(records, reports)
	summary.UnmatchedStudents = plan.Unmatched
	summary.UnprocessedReports = plan.Unprocessed

	if opts.Validate {
		r.validateTemplates(opts.ReportsDir, plan, logger)
	}

	date := opts.Date
	if date.IsZero() {
		date = summary.StartedAt
	}

	// .doc reports are converted on first use; later students sharing the
	// report get the .docx.
	converted := make(map[string]string)
	for _, a := range plan.Assignments {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = r.deps.Clock()
			return summary, err
		}

		path := filepath.Join(opts.ReportsDir, a.Report)
		if docxPath, ok := converted[path]; ok {
			path = docxPath
		}

		outcome := models.ReportOutcome{
			Report:    a.Report,
			StudentID: a.Record.StudentID,
			Student:   a.Record.Name,
			Grade:     a.Record.Grade,
		}

		res, err := r.deps.Filler.Fill(ctx, filler.Request{
			ReportPath:    path,
			SignaturePath: opts.SignaturePath,
			Record:        a.Record,
			Date:          date,
		}, opts.DryRun)

		if res != nil {
			outcome.Comment = res.Comment
			if res.Path != "" && res.Path != path {
				converted[path] = res.Path
			}
		}

		switch {
		case err != nil:
			outcome.Status = models.StatusFailed
			outcome.Reason = err.Error()
			summary.FailedReports = append(summary.FailedReports, a.Report)
			logger.WithError(err).Error("Failed to fill report",
				logging.F(logging.FieldReport, a.Report),
				logging.F(logging.FieldStudent, a.Record.Name))
		case opts.DryRun:
			outcome.Status = models.StatusDryRun
			if res != nil {
				outcome.Reason = res.Note
			}
		default:
			outcome.Status = models.StatusFilled
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.FinishedAt = r.deps.Clock()
	logger.Info("Run finished",
		logging.F("students", len(summary.Records)),
		logging.F("filled", summary.CountByStatus(models.StatusFilled)),
		logging.F("failed", len(summary.FailedReports)),
		logging.F("unmatched_students", len(summary.UnmatchedStudents)),
		logging.F("unprocessed_reports", len(summary.UnprocessedReports)),
		logging.F(logging.FieldDuration, summary.Duration().Milliseconds()))
	return summary, nil
}

// Extract reads and parses the grade table without touching any report.
func (r *Runner) Extract(ctx context.Context, gradesPath string) ([]models.GradeRecord, error) {
	if !fileutils.FileExists(gradesPath) {
		return nil, &gradeerror.ValidationError{FilePath: gradesPath, Reason: "grade table does not exist"}
	}
	return r.extract(ctx, gradesPath, r.deps.Logger)
}

func (r *Runner) extract(ctx context.Context, path string, logger logging.Logger) ([]models.GradeRecord, error) {
	extractor, err := r.deps.Extractors(path)
	if err != nil {
		return nil, err
	}

	tables, err := extractor.ExtractTables(ctx, path)
	if err != nil {
		return nil, err
	}

	result := gradetable.ParseGrades(tables, r.deps.Keywords, logger)
	logger.Info("Extracted grades",
		logging.F(logging.FieldFile, filepath.Base(path)),
		logging.F(logging.FieldBackend, extractor.Name()),
		logging.F(logging.FieldCount, len(result.Records)))
	return result.Records, nil
}

func (r *Runner) validateTemplates(dir string, plan matcher.Plan, logger logging.Logger) {
	seen := make(map[string]bool)
	for _, a := range plan.Assignments {
		if seen[a.Report] || filepath.Ext(a.Report) != ".docx" {
			continue
		}
		seen[a.Report] = true

		check, err := filler.CheckTemplate(filepath.Join(dir, a.Report), r.deps.Markers)
		if err != nil {
			logger.WithError(err).Warn("Cannot inspect report", logging.F(logging.FieldReport, a.Report))
			continue
		}
		if !check.Fillable() {
			logger.Warn("Report template lacks blanks",
				logging.F(logging.FieldReport, a.Report),
				logging.F(logging.FieldReason, fmt.Sprint(check.Missing())))
		}
	}
}

func validateOptions(opts Options) error {
	if !fileutils.FileExists(opts.GradesPath) {
		return &gradeerror.ValidationError{FilePath: opts.GradesPath, Reason: "grade table does not exist"}
	}
	if !fileutils.DirectoryExists(opts.ReportsDir) {
		return &gradeerror.ValidationError{FilePath: opts.ReportsDir, Reason: "report directory does not exist"}
	}
	if !fileutils.FileExists(opts.SignaturePath) {
		return &gradeerror.ValidationError{FilePath: opts.SignaturePath, Reason: "signature image does not exist"}
	}
	return nil
}
