package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/AnTengye/contractgen/backend/pkg/docx"
)

// DefaultPlaceholderPattern matches parenthesized instructions such as "(NOME DO INQUILINO)".
const DefaultPlaceholderPattern = `\([^()]{5,}\)`

// Extractor lists the placeholders of a template.
type Extractor struct {
	patterns []*regexp.Regexp
	literals []string
}

// NewExtractor compiles the default pattern plus extra ones. Literals are
// tokens reported whenever they occur verbatim, for catalog tokens the
// patterns do not describe (e.g. "XXX.XXX").
func NewExtractor(extra []string, literals []string) (*Extractor, error) {
	e := &Extractor{}
	for _, p := range append([]string{DefaultPlaceholderPattern}, extra...) {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile placeholder pattern %q: %w", p, err)
		}
		e.patterns = append(e.patterns, re)
	}
	for _, l := range literals {
		if l != "" {
			e.literals = append(e.literals, l)
		}
	}
	return e, nil
}

// Extract returns the distinct placeholders of a DOCX in first-appearance order.
func (e *Extractor) Extract(content []byte) ([]string, error) {
	doc, err := docx.Open(content)
	if err != nil {
		return nil, &ParseError{What: "template", Err: err}
	}
	return e.scan(doc.Paragraphs()), nil
}

type span struct {
	start, end int
}

func (e *Extractor) scan(paragraphs []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, text := range paragraphs {
		var found []span
		for _, re := range e.patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				found = append(found, span{loc[0], loc[1]})
			}
		}
		for _, lit := range e.literals {
			for from := 0; ; {
				i := strings.Index(text[from:], lit)
				if i < 0 {
					break
				}
				found = append(found, span{from + i, from + i + len(lit)})
				from += i + len(lit)
			}
		}

		// earliest first; at the same start the longer token wins, and
		// anything overlapping an accepted token is part of it
		sort.Slice(found, func(i, j int) bool {
			if found[i].start != found[j].start {
				return found[i].start < found[j].start
			}
			return found[i].end > found[j].end
		})
		end := -1
		for _, s := range found {
			if s.start < end {
				continue
			}
			end = s.end
			tok := text[s.start:s.end]
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}
