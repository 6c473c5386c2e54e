// Package query builds the localized search fanout for a catalog record.
package query

import (
	"strconv"
	"strings"

	"github.com/okian/vidmatch/internal/domain/model"
)

const defaultFallbackLocale = "en"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithLocales restricts and orders the fanout locales. Unknown codes are
// ignored; an empty list keeps the full table.
func WithLocales(codes []string) Option {
	return func(g *Generator) {
		if len(codes) == 0 {
			return
		}
		selected := make([]Locale, 0, len(codes))
		for _, code := range codes {
			if l, ok := LookupLocale(code); ok {
				selected = append(selected, l)
			}
		}
		if len(selected) > 0 {
			g.locales = selected
		}
	}
}

// WithFallbackLocale sets the locale whose label is tried before the
// primary title.
func WithFallbackLocale(code string) Option {
	return func(g *Generator) {
		if l, ok := LookupLocale(code); ok {
			g.fallback = l.Code
		}
	}
}

// Generator produces the ordered query fanout of a record.
type Generator struct {
	locales  []Locale
	fallback string
}

// NewGenerator creates a generator over the full locale table.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		locales:  DefaultLocales(),
		fallback: defaultFallbackLocale,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Size returns the number of queries Fanout produces per record.
func (g *Generator) Size() int {
	return len(g.locales) * len(model.Variants())
}

// Fanout returns one query per (locale, variant), locale-major. It never
// fails: a missing year or title degrades to an empty substitution.
func (g *Generator) Fanout(rec *model.CanonicalRecord) []model.SearchQuery {
	out := make([]model.SearchQuery, 0, g.Size())
	year := ""
	if rec.Year > 0 {
		year = strconv.Itoa(rec.Year)
	}
	for _, l := range g.locales {
		title := g.SearchTitle(rec, l.Code)
		for _, v := range model.Variants() {
			out = append(out, model.SearchQuery{
				Locale:  l.Code,
				Variant: v,
				Text:    joinNonEmpty(title, year, l.Phrase(v)),
			})
		}
	}
	return out
}

// SearchTitle picks the title to search with in locale: the locale's own
// label, then the record's primary-language label, then the fallback
// locale's label, then the primary title.
func (g *Generator) SearchTitle(rec *model.CanonicalRecord, locale string) string {
	if t := rec.Label(locale); t != "" {
		return t
	}
	if primary, ok := LookupLocale(rec.Language); ok {
		if t := rec.Label(primary.Code); t != "" {
			return t
		}
	}
	if t := rec.Label(g.fallback); t != "" {
		return t
	}
	return strings.TrimSpace(rec.Title)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
