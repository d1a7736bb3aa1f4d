package service

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AnTengye/contractgen/backend/config"
)

// OfficeUpdate carries the office fields to change. Nil fields are kept.
type OfficeUpdate struct {
	LawyerName  *string `json:"advogado_nome"`
	LawyerOAB   *string `json:"advogado_oab"`
	Phone       *string `json:"telefone"`
	WhatsApp    *string `json:"whatsapp"`
	Email       *string `json:"email"`
	NoticeEmail *string `json:"email_notificacoes"`
	Address     *string `json:"endereco"`
	Nationality *string `json:"nacionalidade"`
	DefaultCity *string `json:"cidade_padrao"`
}

// OfficeStore holds the office settings, persisted as YAML over the configured base.
type OfficeStore struct {
	path      string
	mu        sync.RWMutex
	office    config.OfficeConfig
	updatedAt time.Time
}

// NewOfficeStore loads path, if present, on top of base.
func NewOfficeStore(path string, base config.OfficeConfig) (*OfficeStore, error) {
	s := &OfficeStore{path: path, office: base}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read office config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.office); err != nil {
		return nil, fmt.Errorf("parse office config %s: %w", path, err)
	}
	if info, err := os.Stat(path); err == nil {
		s.updatedAt = info.ModTime()
	}
	return s, nil
}

func (s *OfficeStore) Office() config.OfficeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.office
}

// UpdatedAt is zero until the settings are saved once.
func (s *OfficeStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Update applies u and persists the result.
func (s *OfficeStore) Update(u OfficeUpdate) (config.OfficeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.office
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&next.LawyerName, u.LawyerName)
	set(&next.LawyerOAB, u.LawyerOAB)
	set(&next.Phone, u.Phone)
	set(&next.WhatsApp, u.WhatsApp)
	set(&next.Email, u.Email)
	set(&next.NoticeEmail, u.NoticeEmail)
	set(&next.Address, u.Address)
	set(&next.Nationality, u.Nationality)
	set(&next.DefaultCity, u.DefaultCity)

	if next.Email != "" && !strings.Contains(next.Email, "@") {
		return s.office, &ValidationError{Field: "email", Reason: "invalid address"}
	}
	if next.NoticeEmail != "" && !strings.Contains(next.NoticeEmail, "@") {
		return s.office, &ValidationError{Field: "email_notificacoes", Reason: "invalid address"}
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return s.office, fmt.Errorf("encode office config: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return s.office, err
	}
	s.office = next
	s.updatedAt = time.Now()
	return next, nil
}
