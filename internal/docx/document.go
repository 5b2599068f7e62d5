// Package docx edits Office Open XML word-processing documents in place.
//
// The package archive is held in memory. Only word/document.xml, its
// relationships and the content-type list are parsed; every other part is
// written back unchanged on save.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"fjacquet/gradefill/internal/fileutils"
	"fjacquet/gradefill/internal/gradeerror"

	"github.com/beevik/etree"
)

const (
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partContentTypes = "[Content_Types].xml"

	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

type part struct {
	header zip.FileHeader
	data   []byte
}

// Document is an opened .docx package.
type Document struct {
	path  string
	parts []*part
	index map[string]*part

	doc   *etree.Document
	rels  *etree.Document
	types *etree.Document
	body  *etree.Element
}

// Open reads the package at path.
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &gradeerror.InvalidFormatError{FilePath: path, ExpectedFormat: "docx", Msg: err.Error()}
	}
	defer func() { _ = zr.Close() }()

	d := &Document{path: path, index: make(map[string]*part)}
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from %s: %w", f.Name, path, err)
		}
		p := &part{header: f.FileHeader, data: data}
		d.parts = append(d.parts, p)
		d.index[f.Name] = p
	}

	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func (d *Document) load() error {
	main, ok := d.index[partDocument]
	if !ok {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: "missing " + partDocument}
	}

	d.doc = etree.NewDocument()
	if err := d.doc.ReadFromBytes(main.data); err != nil {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: err.Error()}
	}
	root := d.doc.Root()
	if root == nil {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: "empty document part"}
	}
	d.body = root.SelectElement("w:body")
	if d.body == nil {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: "document has no body"}
	}

	d.rels = etree.NewDocument()
	if p, ok := d.index[partDocumentRels]; ok {
		if err := d.rels.ReadFromBytes(p.data); err != nil {
			return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: err.Error()}
		}
	} else {
		d.rels.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		d.rels.CreateElement("Relationships").CreateAttr("xmlns", nsRelationships)
	}

	d.types = etree.NewDocument()
	p, ok := d.index[partContentTypes]
	if !ok {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: "missing " + partContentTypes}
	}
	if err := d.types.ReadFromBytes(p.data); err != nil {
		return &gradeerror.InvalidFormatError{FilePath: d.path, ExpectedFormat: "docx", Msg: err.Error()}
	}
	return nil
}

// Tables returns the top-level tables of the body in document order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, el := range d.body.SelectElements("w:tbl") {
		tables = append(tables, &Table{el: el})
	}
	return tables
}

// Paragraphs returns the paragraphs directly under the body.
func (d *Document) Paragraphs() []*Paragraph {
	return paragraphsOf(d.body)
}

// Save writes the document back to the file it was opened from.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path, replacing any existing file atomically.
func (d *Document) SaveAs(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fileutils.WriteFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Bytes serializes the package.
func (d *Document) Bytes() ([]byte, error) {
	if err := d.flush(partDocument, d.doc); err != nil {
		return nil, err
	}
	if err := d.flush(partDocumentRels, d.rels); err != nil {
		return nil, err
	}
	if err := d.flush(partContentTypes, d.types); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		header := p.header
		header.Method = zip.Deflate
		header.Extra = nil
		w, err := zw.CreateHeader(&header)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", header.Name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", header.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) flush(name string, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	d.setPart(name, data)
	return nil
}

func (d *Document) setPart(name string, data []byte) {
	if p, ok := d.index[name]; ok {
		p.data = data
		return
	}
	p := &part{header: zip.FileHeader{Name: name, Method: zip.Deflate}, data: data}
	d.parts = append(d.parts, p)
	d.index[name] = p
}

func (d *Document) hasPart(name string) bool {
	_, ok := d.index[name]
	return ok
}
