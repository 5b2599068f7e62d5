// Package textutils normalizes text pulled out of table cells.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	multiSpace    = regexp.MustCompile(` {2,}`)
)

// NormalizeCell trims a cell and folds internal line breaks and whitespace
// runs into single spaces. Wrapped cells in PDF tables come out split over
// several lines.
func NormalizeCell(cell string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(cell), " ")
}

// FoldWidth maps full-width ASCII forms ("８５", "２０２１００１") to their
// narrow equivalents. Han characters are unchanged.
func FoldWidth(s string) string {
	return width.Fold.String(s)
}

// CompactHan removes whitespace that sits between two Han characters, which
// letter-spaced PDF layouts insert into names ("张  三" -> "张三"). Spaces
// next to Latin letters are kept.
func CompactHan(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if i > 0 && j < len(runes) && isHan(runes[i-1]) && isHan(runes[j]) {
			i = j - 1
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SplitColumns splits a layout line (as printed by pdftotext -layout) into
// cells on runs of two or more spaces.
func SplitColumns(line string) []string {
	line = strings.TrimRight(line, " \t\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := multiSpace.Split(strings.ReplaceAll(line, "\t", "  "), -1)
	cells := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		// A leading indent yields an empty first part; it is not a column.
		if i == 0 && p == "" {
			continue
		}
		cells = append(cells, p)
	}
	return cells
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
