package models

import "time"

// ReportStatus is the outcome of processing one report.
type ReportStatus string

const (
	StatusFilled ReportStatus = "filled"
	StatusFailed ReportStatus = "failed"
	StatusDryRun ReportStatus = "dry-run"
)

// ReportOutcome records what happened to a report assigned to a student.
type ReportOutcome struct {
	Report    string       `csv:"report" json:"report"`
	StudentID string       `csv:"student_id" json:"student_id"`
	Student   string       `csv:"student" json:"student"`
	Grade     string       `csv:"grade" json:"grade"`
	Comment   string       `csv:"comment" json:"comment"`
	Status    ReportStatus `csv:"status" json:"status"`
	Reason    string       `csv:"reason" json:"reason,omitempty"`
}

// Summary is the result of a fill run.
type Summary struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	Records            []GradeRecord
	Outcomes           []ReportOutcome
	UnmatchedStudents  []GradeRecord
	UnprocessedReports []string
	FailedReports      []string
}

// CountByStatus returns how many outcomes have the given status.
func (s *Summary) CountByStatus(status ReportStatus) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// HasFailures reports whether any report failed.
func (s *Summary) HasFailures() bool {
	return len(s.FailedReports) > 0
}

// Duration returns how long the run took.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
