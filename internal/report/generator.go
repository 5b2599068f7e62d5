// Package report renders the outcome of a fill run and the extracted grade
// table.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"

	"github.com/gocarina/gocsv"
)

// ReportGenerator renders run summaries.
type ReportGenerator struct {
	delimiter rune
	logger    logging.Logger
}

// NewReportGenerator creates a generator writing CSV with the given delimiter.
func NewReportGenerator(delimiter rune, logger logging.Logger) *ReportGenerator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &ReportGenerator{delimiter: delimiter, logger: logger}
}

type jsonSummary struct {
	RunID              string                 `json:"run_id"`
	StartedAt          time.Time              `json:"started_at"`
	FinishedAt         time.Time              `json:"finished_at"`
	Outcomes           []models.ReportOutcome `json:"outcomes"`
	UnmatchedStudents  []models.GradeRecord   `json:"unmatched_students"`
	UnprocessedReports []string               `json:"unprocessed_reports"`
	FailedReports      []string               `json:"failed_reports"`
}

// GenerateReport renders the summary as "csv" (one row per report outcome)
// or "json".
func (g *ReportGenerator) GenerateReport(summary *models.Summary, format string) ([]byte, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := g.writeCSV(&buf, summary.Outcomes); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		return g.generateJSONReport(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(summary *models.Summary) ([]byte, error) {
	data, err := json.MarshalIndent(jsonSummary{
		RunID:              summary.RunID,
		StartedAt:          summary.StartedAt,
		FinishedAt:         summary.FinishedAt,
		Outcomes:           summary.Outcomes,
		UnmatchedStudents:  summary.UnmatchedStudents,
		UnprocessedReports: summary.UnprocessedReports,
		FailedReports:      summary.FailedReports,
	}, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

// SummaryFormat picks the summary format from the file extension: "json"
// for .json, "csv" otherwise.
func SummaryFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "csv"
}

// WriteSummaryFile writes the summary to path, as JSON when path ends in
// .json and as the outcome CSV otherwise.
func (g *ReportGenerator) WriteSummaryFile(path string, summary *models.Summary) error {
	data, err := g.GenerateReport(summary, SummaryFormat(path))
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	g.logger.Info("Summary written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(summary.Outcomes)))
	return nil
}

// WriteGrades writes the extracted grade records as CSV.
func (g *ReportGenerator) WriteGrades(w io.Writer, records []models.GradeRecord) error {
	return g.writeCSV(w, records)
}

func (g *ReportGenerator) writeCSV(w io.Writer, rows interface{}) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = g.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// PrintSummary writes a human-readable account of the run.
func (g *ReportGenerator) PrintSummary(w io.Writer, summary *models.Summary) {
	_, _ = fmt.Fprintf(w, "Run %s: %d student(s), %d report(s) filled, %d failed",
		summary.RunID,
		len(summary.Records),
		summary.CountByStatus(models.StatusFilled),
		len(summary.FailedReports))
	if n := summary.CountByStatus(models.StatusDryRun); n > 0 {
		_, _ = fmt.Fprintf(w, ", %d checked (dry run)", n)
	}
	_, _ = fmt.Fprintln(w)

	if len(summary.UnmatchedStudents) > 0 {
		_, _ = fmt.Fprintln(w, "Unmatched students:")
		for _, rec := range summary.UnmatchedStudents {
			_, _ = fmt.Fprintf(w, "  %s %s\n", rec.StudentID, rec.Name)
		}
	}
	if len(summary.UnprocessedReports) > 0 {
		_, _ = fmt.Fprintln(w, "Unprocessed reports:")
		for _, name := range summary.UnprocessedReports {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(summary.FailedReports) > 0 {
		_, _ = fmt.Fprintln(w, "Failed reports:")
		for _, name := range summary.FailedReports {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
	}
}
