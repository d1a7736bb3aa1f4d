package service

import (
	"fmt"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/docx"
)

// Rendered is one generated document.
type Rendered struct {
	Content       []byte
	Replacements  int
	ImageInserted bool
	Warnings      []string
}

// Generator fills a template with resolved values and the contract's print.
type Generator struct {
	marker string
	width  float64
}

func NewGenerator(cfg *config.GenerationConfig) *Generator {
	return &Generator{marker: cfg.ImageMarker, width: cfg.ImageWidthInches}
}

// Generate renders one document. The image marker is never substituted as
// text: with a print it becomes the picture, without one it is removed.
func (g *Generator) Generate(template []byte, values map[string]string, clause *model.Print) (*Rendered, error) {
	doc, err := docx.Open(template)
	if err != nil {
		return nil, &RenderError{Err: err}
	}

	subs := make(map[string]string, len(values))
	for tok, v := range values {
		if tok != g.marker {
			subs[tok] = v
		}
	}
	out := &Rendered{Replacements: doc.Replace(subs)}

	var pic *docx.Picture
	if clause != nil {
		pic = &docx.Picture{Data: clause.Data, WidthInches: g.width}
	}
	found, inserted, err := doc.PlacePicture(g.marker, pic)
	switch {
	case err != nil:
		out.Warnings = append(out.Warnings, fmt.Sprintf("print %s could not be embedded: %v", clause.Filename, err))
	case clause != nil && !found:
		out.Warnings = append(out.Warnings, "template has no clause marker, print not used")
	case clause == nil && found:
		out.Warnings = append(out.Warnings, "no print for this contract, clause marker removed")
	}
	out.ImageInserted = inserted

	out.Content, err = doc.Bytes()
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	return out, nil
}
