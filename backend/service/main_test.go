package service

import (
	"archive/zip"
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/AnTengye/contractgen/backend/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	docHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docTail = `<w:sectPr/></w:body></w:document>`
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Storage.Dir = t.TempDir()
	return cfg
}

func para(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// buildDocx writes a minimal WordprocessingML package with the given body paragraphs.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	files := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"word/document.xml", docHead + strings.Join(paragraphs, "") + docTail},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if data != nil {
			_, err = w.Write(data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zipEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	out := map[string][]byte{}
	for _, f := range zr.File {
		out[f.Name] = readZip(t, f)
	}
	return out
}

func readZip(t *testing.T, f *zip.File) []byte {
	t.Helper()
	data, err := readZipFile(f)
	require.NoError(t, err)
	return data
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

type sheet struct {
	name string
	rows [][]string
}

// buildWorkbook writes an XLSX whose first sheet replaces the default one.
func buildWorkbook(t *testing.T, sheets ...sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &cells))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var baseHeader = []string{
	"Contrato", "Nome Inqs", "CPF_IQS", "Nome PPs", "CPF_PPs", "RG_PPs", "Endereco_PPs",
	"Cidade", "Valor_Aluguel", "Valor_Historico", "Valor_Atualizado",
}

var addressHeader = []string{
	"contract", "house_address", "house_complement", "house_neighborhood", "house_city", "house_zipcode",
}

// contractRow fills every mandatory column.
func contractRow(number, tenants string) []string {
	return []string{number, tenants, "12345678900 / 98765432100", "Carla Souza", "11122233344", "1234567",
		"Rua B, 20", "Niterói", "1500", "3000", "3500,50"}
}

func workbook(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	return buildWorkbook(t,
		sheet{name: "Base Contatos", rows: append([][]string{baseHeader}, rows...)},
		sheet{name: "Endereços", rows: [][]string{
			addressHeader,
			{"61796", "Rua A, 10", "Apto 2", "Centro", "Rio de Janeiro", "20000-000"},
		}},
	)
}
