package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/AnTengye/contractgen/backend/model"
)

// PrintSource provides clause prints by contract number.
type PrintSource interface {
	Get(contract string) (*model.Print, error)
	List() ([]model.Print, error)
}

// Rejection is an upload entry that was not stored.
type Rejection struct {
	Filename string `json:"arquivo"`
	Reason   string `json:"motivo"`
}

// UploadResult reports which print files were stored.
type UploadResult struct {
	Accepted []string    `json:"aceitos"`
	Rejected []Rejection `json:"rejeitados"`
}

var printFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
}

// PrintStore keeps one image per contract number in a flat directory.
type PrintStore struct {
	dir string
	mu  sync.RWMutex
}

func NewPrintStore(dir string) (*PrintStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prints dir: %w", err)
	}
	return &PrintStore{dir: dir}, nil
}

// printName splits an upload name into contract number and extension.
func printName(filename string) (contract, ext string, err error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext = strings.ToLower(filepath.Ext(base))
	if _, ok := printFormats[ext]; !ok {
		return "", "", &ValidationError{Field: "file", Reason: fmt.Sprintf("%s: only png, jpg and jpeg images are accepted", base)}
	}
	contract = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if contract == "" || strings.ContainsAny(contract, `/\`) || contract == "." || contract == ".." {
		return "", "", &ValidationError{Field: "file", Reason: fmt.Sprintf("%s: file name must be the contract number", base)}
	}
	return contract, ext, nil
}

// imageProblem describes why data is not an image of the format ext names,
// or returns "" when it is.
func imageProblem(ext string, data []byte) string {
	if len(data) == 0 {
		return "empty file"
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "not a valid image"
	}
	if format != printFormats[ext] {
		return fmt.Sprintf("content is %s, not %s", format, printFormats[ext])
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "image has no dimensions"
	}
	return ""
}

// Save stores one print, replacing any previous print of the same contract.
func (s *PrintStore) Save(filename string, data []byte) (*model.Print, error) {
	contract, ext, err := printName(filename)
	if err != nil {
		return nil, err
	}
	if problem := imageProblem(ext, data); problem != "" {
		return nil, &ValidationError{Field: "file", Reason: path.Base(strings.ReplaceAll(filename, "\\", "/")) + ": " + problem}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(contract, ext, data)
}

func (s *PrintStore) save(contract, ext string, data []byte) (*model.Print, error) {
	for other := range printFormats {
		if other != ext {
			os.Remove(filepath.Join(s.dir, contract+other))
		}
	}
	name := contract + ext
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return nil, err
	}
	return &model.Print{
		ContractNumber: contract,
		Filename:       name,
		Format:         printFormats[ext],
		Size:           int64(len(data)),
	}, nil
}

// ImportArchive stores every image of a ZIP upload. Any invalid entry
// rejects the whole archive and nothing is stored.
func (s *PrintStore) ImportArchive(data []byte) (*UploadResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{What: "print archive", Err: err}
	}

	type entry struct {
		contract, ext, name string
		data                []byte
	}
	var (
		entries []entry
		result  = &UploadResult{Accepted: []string{}, Rejected: []Rejection{}}
	)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipArchiveEntry(f.Name) {
			continue
		}
		contract, ext, err := printName(f.Name)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				result.Rejected = append(result.Rejected, Rejection{Filename: f.Name, Reason: ve.Reason})
				continue
			}
			return nil, err
		}
		content, err := readZipFile(f)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{Filename: f.Name, Reason: err.Error()})
			continue
		}
		if problem := imageProblem(ext, content); problem != "" {
			result.Rejected = append(result.Rejected, Rejection{Filename: f.Name, Reason: problem})
			continue
		}
		entries = append(entries, entry{contract: contract, ext: ext, name: f.Name, data: content})
	}

	if len(result.Rejected) > 0 {
		return result, &ValidationError{Field: "file", Reason: fmt.Sprintf("archive has %d invalid entries", len(result.Rejected))}
	}
	if len(entries) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "archive contains no images"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		p, err := s.save(e.contract, e.ext, e.data)
		if err != nil {
			return nil, err
		}
		result.Accepted = append(result.Accepted, p.Filename)
	}
	return result, nil
}

func skipArchiveEntry(name string) bool {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return data, nil
}

// Get returns the print of a contract with its content.
func (s *PrintStore) Get(contract string) (*model.Print, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, err := s.find(contract)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read print: %w", err)
	}
	return &model.Print{
		ContractNumber: contract,
		Filename:       name,
		Format:         printFormats[strings.ToLower(filepath.Ext(name))],
		Size:           int64(len(data)),
		Data:           data,
	}, nil
}

func (s *PrintStore) find(contract string) (string, error) {
	if contract == "" || strings.ContainsAny(contract, `/\`) || contract == "." || contract == ".." {
		return "", ErrNotFound
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		name := contract + ext
		if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			return name, nil
		}
	}
	return "", ErrNotFound
}

// List returns prints sorted by contract number, without content.
func (s *PrintStore) List() ([]model.Print, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read prints dir: %w", err)
	}
	out := []model.Print{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		format, ok := printFormats[ext]
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, model.Print{
			ContractNumber: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Filename:       e.Name(),
			Format:         format,
			Size:           info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return out, nil
}

func (s *PrintStore) Delete(contract string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.find(contract)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("remove print: %w", err)
	}
	return nil
}

// DeleteAll removes every print and returns how many were removed.
func (s *PrintStore) DeleteAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read prints dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := printFormats[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return n, fmt.Errorf("remove print: %w", err)
		}
		n++
	}
	return n, nil
}
