package model

import (
	"time"
)

// Template is a stored Word template. Placeholders are derived from the file
// content whenever the file is written and never edited directly.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"` // active, inactive
	Placeholders []string  `json:"placeholders"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Template status constants
const (
	TemplateActive   = "active"
	TemplateInactive = "inactive"
)

func ValidTemplateStatus(s string) bool {
	return s == TemplateActive || s == TemplateInactive
}

// Clone returns a copy that shares nothing with t.
func (t *Template) Clone() *Template {
	c := *t
	c.Placeholders = append([]string(nil), t.Placeholders...)
	return &c
}
