// Package grading derives the teacher comment written next to a grade.
package grading

import (
	"context"
	"sort"
	"time"

	"fjacquet/gradefill/internal/dateutils"
	"fjacquet/gradefill/internal/models"

	"github.com/shopspring/decimal"
)

// Commenter produces the comment for one student's grade.
type Commenter interface {
	Comment(ctx context.Context, rec models.GradeRecord) (string, error)
	Name() string
}

// Band maps a score range to a comment. Max is inclusive; Min is inclusive
// unless MinExclusive is set.
type Band struct {
	Min          decimal.Decimal
	Max          decimal.Decimal
	MinExclusive bool
	Text         string
}

// Contains reports whether score falls in the band.
func (b Band) Contains(score decimal.Decimal) bool {
	if score.GreaterThan(b.Max) {
		return false
	}
	if b.MinExclusive {
		return score.GreaterThan(b.Min)
	}
	return score.GreaterThanOrEqual(b.Min)
}

// DefaultBands are the comments used on the paper forms.
func DefaultBands() []Band {
	return []Band{
		{Min: decimal.NewFromInt(60), Max: decimal.NewFromInt(70), Text: "实习报告内容尚可，但需要进一步提高对专业知识的理解。"},
		{Min: decimal.NewFromInt(70), Max: decimal.NewFromInt(85), MinExclusive: true, Text: "实习报告较为完整，体现了较好的专业理解能力。"},
		{Min: decimal.NewFromInt(85), Max: decimal.NewFromInt(100), MinExclusive: true, Text: "实习报告内容优秀，体现了较强的专业素养和实践能力。"},
	}
}

// BandCommenter picks the comment of the first band containing the score.
// Scores outside every band get an empty comment.
type BandCommenter struct {
	bands []Band
}

// NewBandCommenter creates a BandCommenter; bands are ordered by Min.
func NewBandCommenter(bands []Band) *BandCommenter {
	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min.LessThan(sorted[j].Min) })
	return &BandCommenter{bands: sorted}
}

// Name returns the commenter name for logging.
func (c *BandCommenter) Name() string {
	return "bands"
}

// Comment returns the band comment for rec.Score.
func (c *BandCommenter) Comment(_ context.Context, rec models.GradeRecord) (string, error) {
	return c.ForScore(rec.Score), nil
}

// ForScore returns the band comment for score.
func (c *BandCommenter) ForScore(score decimal.Decimal) string {
	for _, b := range c.bands {
		if b.Contains(score) {
			return b.Text
		}
	}
	return ""
}

// FormatDate renders the date written into the report's date blank.
func FormatDate(t time.Time) string {
	return dateutils.FormatChinese(t)
}
