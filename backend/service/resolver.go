package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
)

// OfficeSource provides the current office settings.
type OfficeSource interface {
	Office() config.OfficeConfig
}

// StaticOffice is an OfficeSource that never changes.
type StaticOffice config.OfficeConfig

func (s StaticOffice) Office() config.OfficeConfig { return config.OfficeConfig(s) }

// Resolution is the substitution map for one contract.
type Resolution struct {
	Values map[string]string
	// Unmapped are template tokens no field is configured for; they stay in the document as written.
	Unmapped []string
}

// Resolver turns a contract record into placeholder values.
type Resolver struct {
	catalog    map[string]string // token -> field key
	office     OfficeSource
	connective string
	missing    string
	now        func() time.Time
}

// NewResolver builds the token catalog from the defaults and the configured overrides.
func NewResolver(cfg *config.GenerationConfig, office OfficeSource) (*Resolver, error) {
	catalog := make(map[string]string, len(DefaultPlaceholders)+len(cfg.Placeholders))
	for tok, key := range DefaultPlaceholders {
		catalog[tok] = key
	}
	for tok, key := range cfg.Placeholders {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("placeholder %q: unknown field %q", tok, key)
		}
		catalog[tok] = key
	}
	return &Resolver{
		catalog:    catalog,
		office:     office,
		connective: cfg.Connective,
		missing:    cfg.MissingValue,
		now:        time.Now,
	}, nil
}

// Tokens returns the catalog tokens, longest first.
func (r *Resolver) Tokens() []string {
	out := make([]string, 0, len(r.catalog))
	for tok := range r.catalog {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Field returns the field key a token is mapped to.
func (r *Resolver) Field(token string) (string, bool) {
	key, ok := r.catalog[token]
	return key, ok
}

func (r *Resolver) context(rec *model.ContractRecord) *fieldCtx {
	return &fieldCtx{
		rec:        rec,
		office:     r.office.Office(),
		connective: r.connective,
		missing:    r.missing,
		now:        r.now(),
	}
}

// Resolve computes values for the placeholders that are both in the template
// and in the catalog. Absent data resolves to the missing-value sentinel.
func (r *Resolver) Resolve(rec *model.ContractRecord, placeholders []string) Resolution {
	fc := r.context(rec)
	res := Resolution{Values: make(map[string]string)}
	for _, tok := range placeholders {
		key, ok := r.catalog[tok]
		if !ok {
			res.Unmapped = append(res.Unmapped, tok)
			continue
		}
		if v, ok := fields[key].value(fc); ok {
			res.Values[tok] = v
		} else {
			res.Values[tok] = r.missing
		}
	}
	return res
}
