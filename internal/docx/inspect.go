package docx

import (
	"archive/zip"
	"fmt"

	"fjacquet/gradefill/internal/gradeerror"
	"fjacquet/gradefill/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

// Inspection is a read-only view of a document's text.
type Inspection struct {
	Body     []string // paragraphs directly under the body
	Cells    []string // paragraphs inside top-level table cells
	Drawings int
}

// Inspect reads the document text without loading it for editing.
func Inspect(path string) (*Inspection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &gradeerror.InvalidFormatError{FilePath: path, ExpectedFormat: "docx", Msg: err.Error()}
	}
	defer func() { _ = zr.Close() }()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == partDocument {
			part = f
			break
		}
	}
	if part == nil {
		return nil, &gradeerror.InvalidFormatError{FilePath: path, ExpectedFormat: "docx", Msg: "missing " + partDocument}
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", partDocument, err)
	}
	defer func() { _ = rc.Close() }()

	root, err := xmlutils.Parse(rc)
	if err != nil {
		return nil, &gradeerror.InvalidFormatError{FilePath: path, ExpectedFormat: "docx", Msg: err.Error()}
	}

	result := &Inspection{}
	if result.Body, err = paragraphTexts(root, xmlutils.XPathBodyParagraph); err != nil {
		return nil, err
	}

	tables, err := xmlutils.Nodes(root, xmlutils.XPathTable)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		texts, err := paragraphTexts(table, xmlutils.XPathCellParagraph)
		if err != nil {
			return nil, err
		}
		result.Cells = append(result.Cells, texts...)
	}

	drawings, err := xmlutils.Nodes(root, xmlutils.XPathDrawing)
	if err != nil {
		return nil, err
	}
	result.Drawings = len(drawings)
	return result, nil
}

// ReadTexts returns every body and table-cell paragraph text of the document.
func ReadTexts(path string) ([]string, error) {
	in, err := Inspect(path)
	if err != nil {
		return nil, err
	}
	return append(append([]string{}, in.Body...), in.Cells...), nil
}

func paragraphTexts(node *xmlpath.Node, xpath string) ([]string, error) {
	paragraphs, err := xmlutils.Nodes(node, xpath)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		text, err := xmlutils.JoinText(p, xmlutils.XPathText)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}
