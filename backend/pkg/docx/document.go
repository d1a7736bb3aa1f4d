// Package docx edits WordprocessingML packages in place: it reads paragraph text,
// substitutes tokens without losing run formatting and embeds inline pictures.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const (
	mainPart         = "word/document.xml"
	mainRelsPart     = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
)

// ErrNotDocx is returned when the content is not a zip package holding word/document.xml.
var ErrNotDocx = errors.New("not a docx package")

// Document is an opened DOCX package. Parts that are never touched are copied
// byte for byte when the package is written back.
type Document struct {
	files    []*zip.File
	byName   map[string]*zip.File
	parts    map[string]*node
	text     []string
	dirty    map[string]bool
	added    []addedFile
	pictures int
}

type addedFile struct {
	name string
	data []byte
}

// Open parses the main document, headers and footers of a DOCX package.
func Open(content []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	d := &Document{
		byName: make(map[string]*zip.File, len(zr.File)),
		parts:  make(map[string]*node),
		dirty:  make(map[string]bool),
	}
	for _, f := range zr.File {
		d.files = append(d.files, f)
		d.byName[f.Name] = f
	}
	if _, ok := d.byName[mainPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDocx, mainPart)
	}

	d.text = append(d.text, mainPart)
	var extra []string
	for _, f := range zr.File {
		base := path.Base(f.Name)
		if path.Dir(f.Name) == "word" && strings.HasSuffix(base, ".xml") &&
			(strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")) {
			extra = append(extra, f.Name)
		}
	}
	sort.Strings(extra)
	d.text = append(d.text, extra...)

	for _, name := range d.text {
		if _, err := d.part(name); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// part returns the parsed tree of a package part, parsing it on first use.
func (d *Document) part(name string) (*node, error) {
	if n, ok := d.parts[name]; ok {
		return n, nil
	}
	f, ok := d.byName[name]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	n, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	d.parts[name] = n
	return n, nil
}

// paragraphs lists every w:p of the text parts, body first, then headers and footers.
func (d *Document) paragraphs() []*node {
	var out []*node
	for _, name := range d.text {
		out = append(out, d.parts[name].findAll("w:p")...)
	}
	return out
}

// Paragraphs returns the visible text of every paragraph, including table
// cells, headers and footers. Runs are concatenated, so a token split over
// several runs reads as one string.
func (d *Document) Paragraphs() []string {
	ps := d.paragraphs()
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		var b strings.Builder
		for _, t := range textSlots(p) {
			b.WriteString(t.innerText())
		}
		out = append(out, b.String())
	}
	return out
}

// Bytes writes the package back. Untouched entries are copied without recompression.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range d.files {
		if !d.dirty[f.Name] {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		if err := writeEntry(zw, f.Name, d.parts[f.Name].bytes()); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{mainRelsPart, contentTypesPart} {
		if _, exists := d.byName[name]; !exists && d.dirty[name] {
			if err := writeEntry(zw, name, d.parts[name].bytes()); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range d.added {
		if err := writeEntry(zw, a.name, a.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (d *Document) markDirty(p *node) {
	for name, root := range d.parts {
		if root == p {
			d.dirty[name] = true
			return
		}
	}
}

// owner walks up to the synthetic root of the part that holds n.
func owner(n *node) *node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}
