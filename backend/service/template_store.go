package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnTengye/contractgen/backend/model"
)

// TemplateSource provides template metadata and content to the batch runner.
type TemplateSource interface {
	Get(id string) (*model.Template, error)
	Content(id string) ([]byte, error)
}

// TemplateUpdate carries the metadata fields to change. Nil fields are kept.
type TemplateUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TemplateStore keeps templates on disk as <id>.docx plus <id>.json metadata.
// Files are replaced by write-then-rename, so readers always see a whole file.
type TemplateStore struct {
	dir       string
	extractor *Extractor
	mu        sync.RWMutex
	now       func() time.Time
}

func NewTemplateStore(dir string, extractor *Extractor) (*TemplateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create templates dir: %w", err)
	}
	return &TemplateStore{dir: dir, extractor: extractor, now: time.Now}, nil
}

func (s *TemplateStore) contentPath(id string) string { return filepath.Join(s.dir, id+".docx") }
func (s *TemplateStore) metaPath(id string) string    { return filepath.Join(s.dir, id+".json") }

// Create stores a new template and derives its placeholders from content.
func (s *TemplateStore) Create(name, description, filename string, content []byte) (*model.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if err := checkDocxName(filename); err != nil {
		return nil, err
	}
	placeholders, err := s.extractor.Extract(content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tpl := &model.Template{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(description),
		Filename:     filepath.Base(filename),
		Status:       model.TemplateActive,
		Placeholders: placeholders,
		Size:         int64(len(content)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.contentPath(tpl.ID), content); err != nil {
		return nil, err
	}
	if err := s.writeMeta(tpl); err != nil {
		os.Remove(s.contentPath(tpl.ID))
		return nil, err
	}
	return tpl.Clone(), nil
}

// List returns templates newest first, optionally only those with status.
func (s *TemplateStore) List(status string) ([]*model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	out := []*model.Template{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		tpl, err := s.readMeta(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		if status != "" && tpl.Status != status {
			continue
		}
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TemplateStore) Get(id string) (*model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta(id)
}

// Content returns a snapshot of the template file.
func (s *TemplateStore) Content(id string) ([]byte, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.contentPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Update changes metadata only.
func (s *TemplateStore) Update(id string, u TemplateUpdate) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "cannot be empty"}
		}
		tpl.Name = name
	}
	if u.Description != nil {
		tpl.Description = strings.TrimSpace(*u.Description)
	}
	if u.Status != nil {
		if !model.ValidTemplateStatus(*u.Status) {
			return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("must be %q or %q", model.TemplateActive, model.TemplateInactive)}
		}
		tpl.Status = *u.Status
	}
	tpl.UpdatedAt = s.now()
	if err := s.writeMeta(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ReplaceFile swaps the template file and re-derives its placeholders.
func (s *TemplateStore) ReplaceFile(id, filename string, content []byte) (*model.Template, error) {
	if err := checkDocxName(filename); err != nil {
		return nil, err
	}
	placeholders, err := s.extractor.Extract(content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.contentPath(id), content); err != nil {
		return nil, err
	}
	tpl.Filename = filepath.Base(filename)
	tpl.Placeholders = placeholders
	tpl.Size = int64(len(content))
	tpl.UpdatedAt = s.now()
	if err := s.writeMeta(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readMeta(id); err != nil {
		return err
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		return fmt.Errorf("remove template metadata: %w", err)
	}
	if err := os.Remove(s.contentPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove template file: %w", err)
	}
	return nil
}

// readMeta must be called with the lock held.
func (s *TemplateStore) readMeta(id string) (*model.Template, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read template metadata: %w", err)
	}
	var tpl model.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("decode template metadata %s: %w", id, err)
	}
	if tpl.Placeholders == nil {
		tpl.Placeholders = []string{}
	}
	return &tpl, nil
}

func (s *TemplateStore) writeMeta(tpl *model.Template) error {
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("encode template metadata: %w", err)
	}
	return writeFileAtomic(s.metaPath(tpl.ID), data)
}

func checkDocxName(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		return &ValidationError{Field: "file", Reason: "only .docx templates are accepted"}
	}
	return nil
}

// validID keeps ids from escaping the storage directory.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// writeFileAtomic writes data to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
