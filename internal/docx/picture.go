package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fjacquet/gradefill/internal/gradeerror"

	"github.com/beevik/etree"
	_ "golang.org/x/image/bmp" // register BMP decoder
)

// EMUPerInch is the number of English Metric Units in an inch.
const EMUPerInch = 914400

// Inches converts a length in inches to EMU.
func Inches(in float64) int64 {
	return int64(in * EMUPerInch)
}

var imageTypes = map[string]struct{ ext, contentType string }{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"bmp":  {"bmp", "image/bmp"},
}

const inlineTemplate = `<w:drawing>` +
	`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">` +
	`<wp:extent cx="%[1]d" cy="%[2]d"/>` +
	`<wp:docPr id="%[3]d" name="Picture %[3]d"/>` +
	`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
	`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
	`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:nvPicPr><pic:cNvPr id="0"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip r:embed="%[4]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
	`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`

// AddPicture appends a run holding the image at imagePath to p, scaled to
// widthEMU with the aspect ratio kept. PNG, JPEG, GIF and BMP are supported.
func (d *Document) AddPicture(p *Paragraph, imagePath string, widthEMU int64) error {
	if widthEMU <= 0 {
		return fmt.Errorf("invalid picture width %d", widthEMU)
	}

	data, err := os.ReadFile(imagePath) // #nosec G304 -- signature path is supplied by the user
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &gradeerror.InvalidFormatError{FilePath: imagePath, ExpectedFormat: "image", Msg: err.Error()}
	}
	kind, ok := imageTypes[format]
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 {
		return &gradeerror.InvalidFormatError{FilePath: imagePath, ExpectedFormat: "image", Msg: "unsupported image " + format}
	}

	media := d.nextMediaName(kind.ext)
	d.setPart(media, data)
	d.ensureDefaultContentType(kind.ext, kind.contentType)
	rID := d.addRelationship(relTypeImage, strings.TrimPrefix(media, "word/"))

	heightEMU := widthEMU * int64(cfg.Height) / int64(cfg.Width)
	drawing, err := inlineDrawing(widthEMU, heightEMU, d.nextDocPrID(), rID, filepath.Base(imagePath))
	if err != nil {
		return err
	}
	p.addRun().AddChild(drawing)
	return nil
}

func inlineDrawing(cx, cy int64, id int, rID, name string) (*etree.Element, error) {
	frag := etree.NewDocument()
	if err := frag.ReadFromString(fmt.Sprintf(inlineTemplate, cx, cy, id, rID)); err != nil {
		return nil, fmt.Errorf("failed to build drawing: %w", err)
	}
	drawing := frag.Root()
	walk(drawing, func(el *etree.Element) {
		if el.Tag == "cNvPr" {
			el.CreateAttr("name", name)
		}
	})
	return drawing, nil
}

func (d *Document) nextMediaName(ext string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("word/media/image%d.%s", i, ext)
		if !d.hasPart(name) {
			return name
		}
	}
}

func (d *Document) nextDocPrID() int {
	maxID := 0
	walk(d.doc.Root(), func(el *etree.Element) {
		if el.Tag != "docPr" {
			return
		}
		if id, err := strconv.Atoi(el.SelectAttrValue("id", "")); err == nil && id > maxID {
			maxID = id
		}
	})
	return maxID + 1
}

func (d *Document) addRelationship(relType, target string) string {
	root := d.rels.Root()
	maxID := 0
	for _, rel := range root.ChildElements() {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}

	id := fmt.Sprintf("rId%d", maxID+1)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	return id
}

func (d *Document) ensureDefaultContentType(ext, contentType string) {
	root := d.types.Root()
	for _, def := range root.SelectElements("Default") {
		if strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	root.InsertChildAt(0, def)
}

func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}
