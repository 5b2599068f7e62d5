package filler

import (
	"strings"

	"fjacquet/gradefill/internal/docx"
)

// TemplateCheck lists the blanks found in a report without modifying it.
type TemplateCheck struct {
	Path           string
	GradeMarker    bool
	SignatureLabel bool
	Hint           bool
	DateBlank      bool
	BlankParagraph bool
	Drawings       int
}

// Missing returns the blanks Fill needs but the template lacks.
func (c *TemplateCheck) Missing() []string {
	var missing []string
	if !c.GradeMarker {
		missing = append(missing, BlankGrade)
	}
	if !c.SignatureLabel {
		missing = append(missing, BlankSignature)
	}
	if !c.BlankParagraph {
		missing = append(missing, BlankComment)
	}
	return missing
}

// Fillable reports whether Fill can be expected to complete the report.
func (c *TemplateCheck) Fillable() bool {
	return len(c.Missing()) == 0
}

// CheckTemplate reads the table cells of the .docx at path and reports which
// markers are present.
func CheckTemplate(path string, m Markers) (*TemplateCheck, error) {
	in, err := docx.Inspect(path)
	if err != nil {
		return nil, err
	}

	check := &TemplateCheck{Path: path, Drawings: in.Drawings}
	for _, text := range in.Cells {
		if m.GradeMarker != "" && strings.Contains(text, m.GradeMarker) {
			check.GradeMarker = true
		}
		if m.SignatureLabel != "" && strings.Contains(text, m.SignatureLabel) {
			check.SignatureLabel = true
		}
		if m.Hint != "" && strings.Contains(text, m.Hint) {
			check.Hint = true
			// the hint paragraph is emptied before the comment is placed
			check.BlankParagraph = true
		}
		if m.DateBlank != "" && strings.Contains(text, m.DateBlank) {
			check.DateBlank = true
		}
		if strings.TrimSpace(text) == "" {
			check.BlankParagraph = true
		}
	}
	return check, nil
}
