package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Paragraph is a w:p element.
type Paragraph struct {
	el *etree.Element
}

// elements whose content is not part of the visible paragraph text
var skippedText = map[string]bool{
	"pPr":       true,
	"rPr":       true,
	"del":       true,
	"delText":   true,
	"instrText": true,
	"drawing":   true,
	"pict":      true,
	"object":    true,
}

// Text returns the paragraph text. Tabs and breaks become \t and \n.
func (p *Paragraph) Text() string {
	var b strings.Builder
	collectText(p.el, &b)
	return b.String()
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, child := range el.ChildElements() {
		if child.Space == "mc" || skippedText[child.Tag] {
			continue
		}
		switch child.Tag {
		case "t":
			b.WriteString(child.Text())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		default:
			collectText(child, b)
		}
	}
}

// SetText replaces the paragraph content with a single run holding s. The
// paragraph properties and the formatting of the first run are kept. An empty
// s leaves the paragraph without runs.
func (p *Paragraph) SetText(s string) {
	var rPr *etree.Element
	if run := firstRun(p.el); run != nil {
		if props := run.SelectElement("w:rPr"); props != nil {
			rPr = props.Copy()
		}
	}

	for _, child := range p.el.ChildElements() {
		if child.Space == "w" && child.Tag == "pPr" {
			continue
		}
		p.el.RemoveChild(child)
	}

	if s == "" {
		return
	}
	run := p.el.CreateElement("w:r")
	if rPr != nil {
		run.AddChild(rPr)
	}
	writeText(run, s)
}

// ReplaceText replaces every occurrence of old in the paragraph text and
// reports whether anything was replaced.
func (p *Paragraph) ReplaceText(old, replacement string) bool {
	text := p.Text()
	if old == "" || !strings.Contains(text, old) {
		return false
	}
	p.SetText(strings.ReplaceAll(text, old, replacement))
	return true
}

// IsBlank reports whether the paragraph text is only whitespace.
func (p *Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text()) == ""
}

func (p *Paragraph) addRun() *etree.Element {
	return p.el.CreateElement("w:r")
}

func firstRun(el *etree.Element) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Space == "w" && child.Tag == "r" {
			return child
		}
		if child.Space == "w" && child.Tag == "pPr" {
			continue
		}
		if run := firstRun(child); run != nil {
			return run
		}
	}
	return nil
}

func writeText(run *etree.Element, s string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := run.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(buf.String())
		buf.Reset()
	}

	for _, r := range s {
		switch r {
		case '\t':
			flush()
			run.CreateElement("w:tab")
		case '\n':
			flush()
			run.CreateElement("w:br")
		default:
			buf.WriteRune(r)
		}
	}
	flush()
}
