package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"
)

const (
	emuPerInch        = 914400
	defaultWidthInch  = 5.5
	relImageType      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relationshipsNS   = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNS    = "http://schemas.openxmlformats.org/package/2006/content-types"
	emptyRelsPart     = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<Relationships xmlns="` + relationshipsNS + `"></Relationships>`
	emptyContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<Types xmlns="` + contentTypesNS + `"></Types>`
)

const drawingRun = `<w:r><w:drawing>` +
	`<wp:inline xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" distT="0" distB="0" distL="0" distR="0">` +
	`<wp:extent cx="%[1]d" cy="%[2]d"/>` +
	`<wp:docPr id="%[3]d" name="%[4]s"/>` +
	`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
	`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
	`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:nvPicPr><pic:cNvPr id="0" name="%[4]s"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" r:embed="%[5]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
	`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`

// w:pPr children that must follow w:jc.
var afterJustification = map[string]bool{
	"w:textDirection":    true,
	"w:textAlignment":    true,
	"w:textboxTightWrap": true,
	"w:outlineLvl":       true,
	"w:divId":            true,
	"w:cnfStyle":         true,
	"w:rPr":              true,
	"w:sectPr":           true,
	"w:pPrChange":        true,
}

// Picture is an image to embed inline.
type Picture struct {
	Data []byte
	// WidthInches defaults to 5.5; the height follows the image aspect ratio.
	WidthInches float64
}

// PlacePicture removes marker from every paragraph. When pic is not nil the
// first body paragraph that held the marker receives the picture and is centered.
// The marker is removed everywhere even when the picture cannot be embedded;
// that error is returned once all parts are clean.
func (d *Document) PlacePicture(marker string, pic *Picture) (found, inserted bool, err error) {
	if marker == "" {
		return false, false, nil
	}
	keys := []string{marker}
	values := map[string]string{marker: ""}
	for _, name := range d.text {
		for _, p := range d.parts[name].findAll("w:p") {
			if replaceParagraph(p, keys, values) == 0 {
				continue
			}
			d.dirty[name] = true
			found = true
			if pic == nil || inserted || err != nil || name != mainPart {
				continue
			}
			if err = d.insertPicture(p, pic); err == nil {
				inserted = true
			}
		}
	}
	return found, inserted, err
}

func (d *Document) insertPicture(p *node, pic *Picture) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pic.Data))
	if err != nil {
		return fmt.Errorf("decode picture: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("picture has no dimensions")
	}
	if format != "png" && format != "jpeg" {
		return fmt.Errorf("unsupported picture format %q", format)
	}

	width := pic.WidthInches
	if width <= 0 {
		width = defaultWidthInch
	}
	cx := int64(width * emuPerInch)
	cy := cx * int64(cfg.Height) / int64(cfg.Width)

	media := d.mediaName(format)
	relID, err := d.addRelationship("media/" + path.Base(media))
	if err != nil {
		return err
	}
	if err := d.ensureDefaultContentType(format, "image/"+format); err != nil {
		return err
	}

	id := d.nextDocPrID()
	label := strings.TrimSuffix(path.Base(media), path.Ext(media))
	nodes, err := parseFragment(fmt.Sprintf(drawingRun, cx, cy, id, label, relID), p)
	if err != nil {
		return fmt.Errorf("build drawing: %w", err)
	}
	for _, n := range nodes {
		p.appendChild(n)
	}
	center(p)

	d.added = append(d.added, addedFile{name: media, data: pic.Data})
	d.dirty[mainPart] = true
	return nil
}

func (d *Document) mediaName(ext string) string {
	taken := func(name string) bool {
		if _, ok := d.byName[name]; ok {
			return true
		}
		for _, a := range d.added {
			if a.name == name {
				return true
			}
		}
		return false
	}
	for {
		d.pictures++
		name := fmt.Sprintf("word/media/print_%d.%s", d.pictures, ext)
		if !taken(name) {
			return name
		}
	}
}

func (d *Document) nextDocPrID() int {
	highest := 0
	for _, name := range d.text {
		for _, pr := range d.parts[name].findAll("wp:docPr") {
			if v, ok := pr.attr("id"); ok {
				if n, err := strconv.Atoi(v); err == nil && n > highest {
					highest = n
				}
			}
		}
	}
	return highest + 1
}

// partOrNew returns a part tree, creating it from skeleton when the package lacks it.
func (d *Document) partOrNew(name, skeleton string) (*node, error) {
	root, err := d.part(name)
	if err != nil {
		return nil, err
	}
	if root != nil {
		return root, nil
	}
	root, err = parseXML([]byte(skeleton))
	if err != nil {
		return nil, err
	}
	d.parts[name] = root
	return root, nil
}

func (d *Document) addRelationship(target string) (string, error) {
	root, err := d.partOrNew(mainRelsPart, emptyRelsPart)
	if err != nil {
		return "", err
	}
	rels := root.firstElement()
	used := make(map[string]bool)
	highest := 0
	for _, r := range rels.findAll("Relationship") {
		id, _ := r.attr("Id")
		used[id] = true
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > highest {
			highest = n
		}
	}
	id := "rId" + strconv.Itoa(highest+1)
	for used[id] {
		highest++
		id = "rId" + strconv.Itoa(highest+1)
	}
	rels.appendChild(&node{kind: elementNode, name: "Relationship", attrs: []attr{
		{name: "Id", value: id},
		{name: "Type", value: relImageType},
		{name: "Target", value: target},
	}})
	d.dirty[mainRelsPart] = true
	return id, nil
}

func (d *Document) ensureDefaultContentType(ext, contentType string) error {
	root, err := d.partOrNew(contentTypesPart, emptyContentTypes)
	if err != nil {
		return err
	}
	types := root.firstElement()
	for _, def := range types.findAll("Default") {
		if v, _ := def.attr("Extension"); strings.EqualFold(v, ext) {
			return nil
		}
	}
	types.insertAt(0, &node{kind: elementNode, name: "Default", attrs: []attr{
		{name: "Extension", value: ext},
		{name: "ContentType", value: contentType},
	}})
	d.dirty[contentTypesPart] = true
	return nil
}

func center(p *node) {
	ppr := p.child("w:pPr")
	if ppr == nil {
		ppr = &node{kind: elementNode, name: "w:pPr"}
		p.insertAt(0, ppr)
	}
	if jc := ppr.child("w:jc"); jc != nil {
		jc.setAttr("w:val", "center")
		return
	}
	jc := &node{kind: elementNode, name: "w:jc", attrs: []attr{{name: "w:val", value: "center"}}}
	for i, c := range ppr.children {
		if c.kind == elementNode && afterJustification[c.name] {
			ppr.insertAt(i, jc)
			return
		}
	}
	ppr.appendChild(jc)
}
