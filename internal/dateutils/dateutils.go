// Package dateutils formats the date written into reports and parses the
// date override accepted on the command line.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayoutISO     = "2006-01-02"
	DateLayoutChinese = "2006年01月02日"
)

// CommonFormats are tried in order by ParseDate.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutChinese,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"2006年1月2日",
}

// FormatChinese renders t as 2024年06月01日, zero-padded like the paper forms.
func FormatChinese(t time.Time) string {
	return t.Format(DateLayoutChinese)
}

// ParseDate parses a date in one of CommonFormats, in local time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date '%s' (expected e.g. %s)", s, DateLayoutISO)
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

// FillDate returns the date to write into reports: the override when set,
// otherwise today.
func FillDate(override string, now Clock) (time.Time, error) {
	if override != "" {
		return ParseDate(override)
	}
	if now == nil {
		now = time.Now
	}
	return now(), nil
}
