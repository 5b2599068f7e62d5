package gradetable

import (
	"strings"

	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"
	"fjacquet/gradefill/internal/textutils"
)

// Keywords identify the header cells of the three columns of interest.
type Keywords struct {
	StudentID string
	Name      string
	Grade     string
}

// DefaultKeywords are the headers of the internship grade sheet.
var DefaultKeywords = Keywords{StudentID: "学号", Name: "姓名", Grade: "实习报告"}

const (
	colStudentID = "student_id"
	colName      = "name"
	colGrade     = "grade"
)

// RowIssue describes a data row that was rejected because of its grade.
type RowIssue struct {
	Table  int
	Row    int
	Cells  []string
	Reason string
}

// Result is the outcome of ParseGrades.
type Result struct {
	Records []models.GradeRecord
	Issues  []RowIssue
	// Columns maps column roles to indexes; empty when no header was seen.
	Columns map[string]int
}

// HeaderFound reports whether a header row was detected.
func (r Result) HeaderFound() bool {
	return len(r.Columns) > 0
}

// ParseGrades walks all rows of all tables in order. The first row with a
// cell containing one of the keywords is the header; the column mapping it
// defines applies to every following row, across tables and pages. Each cell
// is checked for the student-id keyword first, then name, then grade; a later
// cell with the same keyword wins.
//
// Rows lacking a mapped column are skipped. Full-width digits in the id and
// grade cells are folded to ASCII; rows whose grade then does not start with
// a digit are reported as issues.
func ParseGrades(tables []Table, kw Keywords, logger logging.Logger) Result {
	result := Result{Columns: map[string]int{}}

	for ti, table := range tables {
		for ri, row := range table {
			if len(result.Columns) == 0 {
				detectHeader(row, kw, result.Columns)
				if len(result.Columns) > 0 {
					logger.Debug("Detected header row",
						logging.F(logging.FieldRow, ri),
						logging.F("columns", result.Columns))
				}
				continue
			}

			id, okID := cellAt(row, result.Columns, colStudentID)
			name, okName := cellAt(row, result.Columns, colName)
			grade, okGrade := cellAt(row, result.Columns, colGrade)
			if !okID || !okName || !okGrade {
				logger.Debug("Skipping row without all mapped columns",
					logging.F(logging.FieldRow, ri),
					logging.F("cells", row))
				continue
			}

			id = textutils.FoldWidth(textutils.NormalizeCell(id))
			name = textutils.CompactHan(textutils.NormalizeCell(name))
			grade = textutils.FoldWidth(textutils.NormalizeCell(grade))

			record, err := models.NewGradeRecord(id, name, grade)
			if err != nil {
				logger.Warn("Invalid grade format",
					logging.F(logging.FieldStudent, name),
					logging.F(logging.FieldGrade, grade))
				result.Issues = append(result.Issues, RowIssue{
					Table: ti, Row: ri, Cells: row, Reason: err.Error(),
				})
				continue
			}
			result.Records = append(result.Records, record)
		}
	}

	if len(result.Columns) == 0 {
		logger.Warn("No header row found in grade table",
			logging.F("keywords", []string{kw.StudentID, kw.Name, kw.Grade}))
	}
	return result
}

func detectHeader(row []string, kw Keywords, columns map[string]int) {
	for i, cell := range row {
		cell = textutils.CompactHan(cell)
		switch {
		case strings.Contains(cell, kw.StudentID):
			columns[colStudentID] = i
		case strings.Contains(cell, kw.Name):
			columns[colName] = i
		case strings.Contains(cell, kw.Grade):
			columns[colGrade] = i
		}
	}
}

func cellAt(row []string, columns map[string]int, col string) (string, bool) {
	idx, ok := columns[col]
	if !ok || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}
