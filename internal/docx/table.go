package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Table is a w:tbl element.
type Table struct {
	el *etree.Element
}

// Rows returns the table rows in order.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, el := range t.el.SelectElements("w:tr") {
		rows = append(rows, &Row{el: el})
	}
	return rows
}

// Row is a w:tr element.
type Row struct {
	el *etree.Element
}

// Cells returns the distinct cells of the row. A horizontally merged cell
// appears once.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, el := range r.el.SelectElements("w:tc") {
		cells = append(cells, &Cell{el: el})
	}
	return cells
}

// Cell is a w:tc element.
type Cell struct {
	el *etree.Element
}

// Paragraphs returns the paragraphs directly inside the cell.
func (c *Cell) Paragraphs() []*Paragraph {
	return paragraphsOf(c.el)
}

// Text joins the cell's paragraph texts with newlines.
func (c *Cell) Text() string {
	paragraphs := c.Paragraphs()
	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		texts = append(texts, p.Text())
	}
	return strings.Join(texts, "\n")
}

func paragraphsOf(el *etree.Element) []*Paragraph {
	var paragraphs []*Paragraph
	for _, p := range el.SelectElements("w:p") {
		paragraphs = append(paragraphs, &Paragraph{el: p})
	}
	return paragraphs
}
