// Package filler writes a grade, a signature, a comment and a date into one
// internship report.
package filler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/gradefill/internal/docconv"
	"fjacquet/gradefill/internal/docx"
	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/grading"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"
)

// Names of the blanks reported in gradeerror.FillError.Missing.
const (
	BlankGrade     = "grade"
	BlankSignature = "signature"
	BlankComment   = "comment"
)

// Markers locate the blanks of the report template.
type Markers struct {
	// GradeMarker is the empty grade line; it is replaced by GradeFormat
	// with the grade substituted for %s.
	GradeMarker    string
	GradeFormat    string
	SignatureLabel string
	// Hint is the instruction paragraph removed once the grade is written.
	Hint      string
	DateBlank string
}

// DefaultMarkers match the university's internship report template.
func DefaultMarkers() Markers {
	return Markers{
		GradeMarker:    "综合成绩评定（百分制或五级制）：        ",
		GradeFormat:    "综合成绩评定（百分制或五级制）：  %s  ",
		SignatureLabel: "指导教师手写签名：",
		Hint:           "（学生是否完成实习计划，实习任务完成的水平、效益，研究和解决实践问题的意识和能力，工作态度、综合素质、品德纪律等情况）",
		DateBlank:      "年   月   日",
	}
}

// Request describes one report to fill.
type Request struct {
	ReportPath    string
	SignaturePath string
	Record        models.GradeRecord
	Date          time.Time
}

// Result tells which blanks were written.
type Result struct {
	// Path is the filled file; it differs from the request for converted .doc reports.
	Path        string
	Comment     string
	GradeFilled bool
	Signed      bool
	Commented   bool
	Saved       bool
	// Note explains a dry run that could not look inside the report.
	Note string
}

// Complete reports whether every blank was written.
func (r *Result) Complete() bool {
	return r.GradeFilled && r.Signed && r.Commented
}

func (r *Result) missing() []string {
	var missing []string
	if !r.GradeFilled {
		missing = append(missing, BlankGrade)
	}
	if !r.Signed {
		missing = append(missing, BlankSignature)
	}
	if !r.Commented {
		missing = append(missing, BlankComment)
	}
	return missing
}

// Filler fills reports.
type Filler struct {
	markers   Markers
	width     int64
	commenter grading.Commenter
	converter docconv.Converter
	logger    logging.Logger
}

// New creates a Filler. widthEMU is the signature picture width.
func New(markers Markers, widthEMU int64, commenter grading.Commenter, converter docconv.Converter, logger logging.Logger) *Filler {
	return &Filler{
		markers:   markers,
		width:     widthEMU,
		commenter: commenter,
		converter: converter,
		logger:    logger,
	}
}

// Fill writes the blanks of one report. A .doc report is converted to .docx
// first. The report is saved only when the grade, the signature and the
// comment were all written; otherwise a *gradeerror.FillError listing the
// missing blanks is returned together with the partial Result. With dryRun
// nothing is converted or saved.
func (f *Filler) Fill(ctx context.Context, req Request, dryRun bool) (*Result, error) {
	path := req.ReportPath
	report := filepath.Base(path)
	logger := f.logger.WithFields(
		logging.F(logging.FieldReport, report),
		logging.F(logging.FieldStudent, req.Record.Name))
	logger.Info("Processing report")

	if strings.HasSuffix(path, ".doc") {
		if dryRun {
			return &Result{Path: path, Note: "requires conversion to .docx"}, nil
		}
		converted, err := f.converter.Convert(ctx, path)
		if err != nil {
			return nil, &gradeerror.FillError{Report: report, Err: err}
		}
		path = converted
	}

	doc, err := docx.Open(path)
	if err != nil {
		return nil, &gradeerror.FillError{Report: report, Err: err}
	}

	// a dry run never asks the AI for a comment
	commenter := f.commenter
	if dryRun {
		commenter = grading.Offline(commenter)
	}

	res := &Result{Path: path}
	if err := f.fillDocument(ctx, doc, req, commenter, res, logger); err != nil {
		return nil, &gradeerror.FillError{Report: report, Err: err}
	}

	if !res.Complete() {
		missing := res.missing()
		logger.Warn("Report template is missing blanks",
			logging.F(logging.FieldReason, strings.Join(missing, ", ")))
		return res, &gradeerror.FillError{Report: report, Missing: missing}
	}

	if dryRun {
		return res, nil
	}
	if err := doc.Save(); err != nil {
		return nil, &gradeerror.FillError{Report: report, Err: err}
	}
	res.Saved = true
	logger.Info("Report filled", logging.F(logging.FieldGrade, req.Record.Grade))
	return res, nil
}

// fillDocument walks tables, rows and cells. The grade and the signature may
// be found in any cell up to and including the one holding the grade; the
// hint, the date and the comment are only looked for in the grade cell, after
// which the walk stops. The comment is generated only once its paragraph has
// been found.
func (f *Filler) fillDocument(ctx context.Context, doc *docx.Document, req Request, commenter grading.Commenter, res *Result, logger logging.Logger) error {
	m := f.markers
	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				for _, p := range cell.Paragraphs() {
					if !res.GradeFilled && m.GradeMarker != "" && strings.Contains(p.Text(), m.GradeMarker) {
						p.ReplaceText(m.GradeMarker, fmt.Sprintf(m.GradeFormat, req.Record.Grade))
						res.GradeFilled = true
						logger.Debug("Grade filled")
					}

					if !res.Signed && m.SignatureLabel != "" && strings.Contains(p.Text(), m.SignatureLabel) {
						if err := doc.AddPicture(p, req.SignaturePath, f.width); err != nil {
							return fmt.Errorf("signature: %w", err)
						}
						res.Signed = true
						logger.Debug("Signature inserted")
					}
				}

				if !res.GradeFilled {
					continue
				}

				for _, p := range cell.Paragraphs() {
					if m.Hint != "" && strings.Contains(p.Text(), m.Hint) {
						p.SetText("")
						logger.Debug("Hint removed")
					}
					if m.DateBlank != "" && p.ReplaceText(m.DateBlank, grading.FormatDate(req.Date)) {
						logger.Debug("Date filled")
					}
					if !res.Commented && p.IsBlank() {
						comment, err := commenter.Comment(ctx, req.Record)
						if err != nil {
							return fmt.Errorf("comment: %w", err)
						}
						res.Comment = comment
						p.SetText(comment)
						res.Commented = true
						logger.Debug("Comment inserted")
					}
				}
				return nil
			}
		}
	}
	return nil
}
