// Package xmlutils provides XML-related utility functions used throughout the application.
package xmlutils

// XPath expressions over word/document.xml. xmlpath matches on local names,
// so the w: prefix is left out.
const (
	// XPathBodyParagraph selects paragraphs directly under the document body.
	XPathBodyParagraph = "/document/body/p"
	// XPathTable selects top-level tables.
	XPathTable = "/document/body/tbl"
	// XPathCellParagraph selects paragraphs inside table cells, relative to a table.
	XPathCellParagraph = "tr/tc/p"
	// XPathText selects the text runs of a paragraph, relative to it.
	XPathText = "r/t"
	// XPathDrawing selects inline drawings anywhere in the document.
	XPathDrawing = "//drawing"
)
