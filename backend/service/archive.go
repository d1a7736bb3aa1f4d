package service

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// ArchiveWriter streams generated documents into a flat ZIP file.
type ArchiveWriter struct {
	path  string
	file  *os.File
	zw    *zip.Writer
	names map[string]bool
}

func NewArchiveWriter(path string) (*ArchiveWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	return &ArchiveWriter{path: path, file: f, zw: zip.NewWriter(f), names: map[string]bool{}}, nil
}

// Add writes one entry. Entry times are left zero so equal input gives equal bytes.
func (a *ArchiveWriter) Add(name string, data []byte) error {
	if a.names[name] {
		return fmt.Errorf("archive entry %q already written", name)
	}
	w, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	a.names[name] = true
	return nil
}

func (a *ArchiveWriter) Close() error {
	if err := a.zw.Close(); err != nil {
		a.file.Close()
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func (a *ArchiveWriter) Path() string { return a.path }

// Len is the number of entries written so far.
func (a *ArchiveWriter) Len() int { return len(a.names) }
