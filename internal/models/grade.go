// Package models holds the data passed between extraction, matching and
// filling.
package models

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the numeric prefix that makes a grade cell valid.
var leadingNumber = regexp.MustCompile(`^\d+(\.\d+)?`)

// GradeRecord is one data row of the grade table.
type GradeRecord struct {
	StudentID string          `csv:"student_id" json:"student_id" yaml:"student_id"`
	Name      string          `csv:"name" json:"name" yaml:"name"`
	Grade     string          `csv:"grade" json:"grade" yaml:"grade"`
	Score     decimal.Decimal `csv:"-" json:"score" yaml:"-"`
}

// NewGradeRecord builds a record, parsing the numeric prefix of grade into
// Score. It fails when grade does not start with a digit.
func NewGradeRecord(studentID, name, grade string) (GradeRecord, error) {
	score, err := ParseScore(grade)
	if err != nil {
		return GradeRecord{}, err
	}
	return GradeRecord{
		StudentID: studentID,
		Name:      name,
		Grade:     grade,
		Score:     score,
	}, nil
}

// ParseScore returns the numeric prefix of a grade cell ("85", "92.5分").
func ParseScore(grade string) (decimal.Decimal, error) {
	prefix := leadingNumber.FindString(grade)
	if prefix == "" {
		return decimal.Zero, fmt.Errorf("invalid grade format '%s'", grade)
	}
	score, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid grade '%s': %w", grade, err)
	}
	return score, nil
}
