package handler

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	templates *service.TemplateStore
	prints    *service.PrintStore
	jobs      *service.JobStore
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	cfg.Storage.Dir = t.TempDir()

	office, err := service.NewOfficeStore(cfg.Storage.OfficeFile(), cfg.Office)
	if err != nil {
		t.Fatalf("Failed to create office store: %v", err)
	}
	resolver, err := service.NewResolver(&cfg.Generation, office)
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	extractor, err := service.NewExtractor(cfg.Generation.PlaceholderPatterns, resolver.Tokens())
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}
	templates, err := service.NewTemplateStore(cfg.Storage.TemplatesDir(), extractor)
	if err != nil {
		t.Fatalf("Failed to create template store: %v", err)
	}
	prints, err := service.NewPrintStore(cfg.Storage.PrintsDir())
	if err != nil {
		t.Fatalf("Failed to create print store: %v", err)
	}
	jobs := service.NewJobStore(&cfg.Store, cfg.Storage.OutputsDir())
	runner, err := service.NewBatchRunner(cfg, office, templates, prints, jobs)
	if err != nil {
		t.Fatalf("Failed to create batch runner: %v", err)
	}

	h := &Handlers{
		Templates: NewTemplateHandler(templates),
		Prints:    NewPrintHandler(prints),
		Contracts: NewContractHandler(runner, jobs),
		Config:    NewConfigHandler(office),
	}
	router := gin.New()
	h.Register(router.Group("/api/v1"))

	return &testServer{router: router, templates: templates, prints: prints, jobs: jobs}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type upload struct {
	field    string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, method, url string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := w.Write(f.data); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return out
}

func testDocx(t *testing.T, text ...string) []byte {
	t.Helper()
	body := ""
	for _, s := range text {
		body += `<w:p><w:r><w:t xml:space="preserve">` + s + `</w:t></w:r></w:p>`
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create docx entry: %v", err)
	}
	io.WriteString(w, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		body+`</w:body></w:document>`)
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close docx: %v", err)
	}
	return buf.Bytes()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2)), nil); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func testWorkbook(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Contatos"); err != nil {
		t.Fatalf("Failed to rename sheet: %v", err)
	}
	header := []string{"Contrato", "Nome Inqs", "CPF_IQS", "Nome PPs", "CPF_PPs", "RG_PPs", "Endereco_PPs",
		"Cidade", "Valor_Aluguel", "Valor_Historico", "Valor_Atualizado"}
	for r, row := range append([][]string{header}, rows...) {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow("Contatos", cell, &cells); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func completeRow(number string) []string {
	return []string{number, "Ana Silva / Bruno Costa", "12345678900 / 98765432100", "Carla Souza",
		"11122233344", "1234567", "Rua B, 20", "Niterói", "1500", "3000", "3500"}
}
