// Package matcher pairs grade records with report files by looking for the
// student's name inside the file name.
package matcher

import (
	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Assignment pairs a student with the report file to fill.
type Assignment struct {
	Record models.GradeRecord
	Report string
	Fuzzy  bool
}

// Plan is the outcome of matching.
type Plan struct {
	Assignments []Assignment
	// Unmatched lists students without any report, in table order.
	Unmatched []models.GradeRecord
	// Unprocessed lists reports no student was assigned to, in listing order.
	Unprocessed []string
}

// Matcher assigns reports to students.
type Matcher struct {
	fuzzy  bool
	logger logging.Logger
}

// New creates a Matcher. With fuzzyFallback, a student whose name is not a
// substring of any file name is matched against file names containing the
// name's characters in order ("张三" matches "张_三.docx").
func New(fuzzyFallback bool, logger logging.Logger) *Matcher {
	return &Matcher{fuzzy: fuzzyFallback, logger: logger}
}

// ListReports returns the report file names in dir carrying one of the
// extensions, sorted.
func ListReports(dir string, extensions []string) ([]string, error) {
	return fileutils.ListFilesWithSuffix(dir, extensions...)
}

// Match gives each record the first report (in the given order) whose name
// contains the student's name. A report may be given to several students.
// Records with an empty name are never matched.
func (m *Matcher) Match(records []models.GradeRecord, reports []string) Plan {
	candidates := m.substringCandidates(records, reports)

	var plan Plan
	assigned := make(map[string]bool)

	for _, rec := range records {
		if rec.Name == "" {
			m.logger.Warn("Student without a name cannot be matched",
				logging.F(logging.FieldStudentID, rec.StudentID))
			plan.Unmatched = append(plan.Unmatched, rec)
			continue
		}

		if hits := candidates[rec.Name]; len(hits) > 0 {
			plan.Assignments = append(plan.Assignments, Assignment{Record: rec, Report: hits[0]})
			assigned[hits[0]] = true
			m.logger.Debug("Matched report",
				logging.F(logging.FieldStudent, rec.Name),
				logging.F(logging.FieldReport, hits[0]))
			continue
		}

		if m.fuzzy {
			if report, ok := fuzzyCandidate(rec.Name, reports); ok {
				plan.Assignments = append(plan.Assignments, Assignment{Record: rec, Report: report, Fuzzy: true})
				assigned[report] = true
				m.logger.Info("Matched report by fuzzy search",
					logging.F(logging.FieldStudent, rec.Name),
					logging.F(logging.FieldReport, report))
				continue
			}
		}

		plan.Unmatched = append(plan.Unmatched, rec)
	}

	for _, report := range reports {
		if !assigned[report] {
			plan.Unprocessed = append(plan.Unprocessed, report)
		}
	}

	return plan
}

// substringCandidates scans every report name once with an Aho-Corasick
// automaton over all student names and returns, per name, the reports that
// contain it in listing order.
func (m *Matcher) substringCandidates(records []models.GradeRecord, reports []string) map[string][]string {
	index := make(map[string]int)
	var names []string
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		if _, ok := index[rec.Name]; !ok {
			index[rec.Name] = len(names)
			names = append(names, rec.Name)
		}
	}

	candidates := make(map[string][]string, len(names))
	if len(names) == 0 {
		return candidates
	}

	ac := ahocorasick.NewStringMatcher(names)
	for _, report := range reports {
		for _, hit := range ac.Match([]byte(report)) {
			if hit < 0 || hit >= len(names) {
				continue
			}
			name := names[hit]
			candidates[name] = append(candidates[name], report)
		}
	}
	return candidates
}

func fuzzyCandidate(name string, reports []string) (string, bool) {
	for _, report := range reports {
		if fuzzy.Match(name, report) {
			return report, true
		}
	}
	return "", false
}
