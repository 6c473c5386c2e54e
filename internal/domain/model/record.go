// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord marks a catalog line that cannot be matched.
var ErrMalformedRecord = errors.New("malformed catalog record")

// CanonicalRecord is one read-only catalog entry to be matched.
type CanonicalRecord struct {
	ID              string            `json:"id"`              // catalog identifier, e.g. a Wikidata QID
	Title           string            `json:"title"`           // primary title
	TitleLabels     map[string]string `json:"titleLabels"`     // locale -> localized title
	Year            int               `json:"year"`            // release year, 0 when unknown
	DurationSeconds int               `json:"durationSeconds"` // runtime, 0 when unknown
	Language        string            `json:"language"`        // primary language code or name
}

// Validate reports whether the record carries enough to be matched.
func (r *CanonicalRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: missing id", ErrMalformedRecord)
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: %s: missing title", ErrMalformedRecord, r.ID)
	case r.DurationSeconds < 0:
		return fmt.Errorf("%w: %s: negative duration %d", ErrMalformedRecord, r.ID, r.DurationSeconds)
	}
	return nil
}

// Label returns the localized title for locale, or "" when absent.
func (r *CanonicalRecord) Label(locale string) string {
	if locale == "" || r.TitleLabels == nil {
		return ""
	}
	return strings.TrimSpace(r.TitleLabels[locale])
}

// Variant selects the localized "full movie" phrasing of a query.
type Variant string

// Phrasing variants, in fanout order.
const (
	VariantShort Variant = "short"
	VariantLong  Variant = "long"
)

// Variants lists every phrasing variant in fanout order.
func Variants() []Variant { return []Variant{VariantShort, VariantLong} }

// SearchQuery is one provider query derived from a record.
type SearchQuery struct {
	Locale  string
	Variant Variant
	Text    string
}

// Candidate is one search hit returned by the provider. Identity is ID alone.
type Candidate struct {
	ID              string
	Title           string
	UploaderID      string
	Uploader        string
	DurationSeconds int    // 0 when unknown
	UploadDate      string // YYYY-MM-DD, or "" when unknown
}

// ScoredCandidate pairs a candidate with its similarity to the record.
type ScoredCandidate struct {
	Candidate
	Score float64
	Query SearchQuery // first query that returned the candidate
}

// MatchRecord is one persisted match line.
type MatchRecord struct {
	RecordID      string  `json:"qid"`
	OriginalTitle string  `json:"original_title"`
	TargetYear    int     `json:"target_year"`
	FoundTitle    string  `json:"found_title"`
	FoundID       string  `json:"found_id"`
	FoundDuration int     `json:"found_duration"`
	ChannelID     string  `json:"found_channel_id"`
	Channel       string  `json:"found_channel"`
	UploadDate    string  `json:"upload_date"`
	PreviewURL    string  `json:"preview_url"`
	CheckedAt     string  `json:"checked_at"`
	Score         float64 `json:"match_score"`
}
