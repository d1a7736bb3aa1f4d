package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/docx"
)

func renderedParagraphs(t *testing.T, content []byte) []string {
	t.Helper()
	doc, err := docx.Open(content)
	require.NoError(t, err)
	return doc.Paragraphs()
}

func TestGenerateReplacesValues(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)
	template := buildDocx(t,
		para(run("Locatários: (NOME DO "), run("INQUILINO).")),
		para(run("Valor: (VALOR DO ALUGUEL)")),
	)

	out, err := g.Generate(template, map[string]string{
		"(NOME DO INQUILINO)": "Ana Silva e Bruno Costa",
		"(VALOR DO ALUGUEL)":  "R$ 1.500,00",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Replacements)
	assert.False(t, out.ImageInserted)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, []string{"Locatários: Ana Silva e Bruno Costa.", "Valor: R$ 1.500,00"}, renderedParagraphs(t, out.Content))
}

func TestGenerateMissingPrintIsAWarning(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)
	template := buildDocx(t,
		para(run("Cláusula:")),
		para(run(config.DefaultImageMarker)),
	)

	out, err := g.Generate(template, map[string]string{config.DefaultImageMarker: "N/D"}, nil)
	require.NoError(t, err)
	assert.False(t, out.ImageInserted)
	assert.Equal(t, []string{"no print for this contract, clause marker removed"}, out.Warnings)
	assert.Equal(t, []string{"Cláusula:", ""}, renderedParagraphs(t, out.Content))
}

func TestGenerateEmbedsPrint(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)
	template := buildDocx(t, para(run(config.DefaultImageMarker)))
	clause := &model.Print{ContractNumber: "61796", Filename: "61796.png", Format: "png", Data: pngBytes(t, 20, 10)}

	out, err := g.Generate(template, nil, clause)
	require.NoError(t, err)
	assert.True(t, out.ImageInserted)
	assert.Empty(t, out.Warnings)
}

func TestGenerateWarnsOnUnusablePrint(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)
	clause := &model.Print{ContractNumber: "1", Filename: "1.png", Format: "png", Data: pngBytes(t, 4, 4)}

	out, err := g.Generate(buildDocx(t, para(run("sem marcador"))), nil, clause)
	require.NoError(t, err)
	assert.Equal(t, []string{"template has no clause marker, print not used"}, out.Warnings)

	broken := &model.Print{ContractNumber: "1", Filename: "1.png", Format: "png", Data: []byte("not an image")}
	out, err = g.Generate(buildDocx(t, para(run(config.DefaultImageMarker))), nil, broken)
	require.NoError(t, err)
	assert.False(t, out.ImageInserted)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "1.png could not be embedded")
}

func TestGenerateBrokenPrintClearsEveryMarker(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)
	template := buildDocx(t,
		para(run(config.DefaultImageMarker)),
		para(run("x "+config.DefaultImageMarker)),
	)
	broken := &model.Print{ContractNumber: "61796", Filename: "61796.png", Format: "png", Data: []byte("definitely not a png")}

	out, err := g.Generate(template, nil, broken)
	require.NoError(t, err)
	assert.False(t, out.ImageInserted)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "61796.png could not be embedded")
	assert.Equal(t, []string{"", "x "}, renderedParagraphs(t, out.Content))
}

func TestGenerateRejectsBrokenTemplate(t *testing.T) {
	g := NewGenerator(&testConfig(t).Generation)

	_, err := g.Generate([]byte("nope"), nil, nil)
	var re *RenderError
	assert.ErrorAs(t, err, &re)
}
