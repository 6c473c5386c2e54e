package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/okian/vidmatch/internal/domain/model"
)

// scriptedProvider answers by query text; queries without a script fall
// back to def.
type scriptedProvider struct {
	mu      sync.Mutex
	scripts map[string][]model.Candidate
	def     []model.Candidate
	calls   int
	panicOn string
}

func (p *scriptedProvider) Search(_ context.Context, q string) []model.Candidate {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.panicOn != "" && q == p.panicOn {
		panic("provider exploded")
	}
	if c, ok := p.scripts[q]; ok {
		return c
	}
	return p.def
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type memorySink struct {
	mu      sync.Mutex
	records []model.MatchRecord
	err     error
	limit   int // fail appends once this many records are held; 0 is unlimited
}

var errSinkFull = errors.New("sink full")

func (s *memorySink) Append(_ context.Context, m model.MatchRecord) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.records) >= s.limit {
		return errSinkFull
	}
	s.records = append(s.records, m)
	return nil
}

func (s *memorySink) Records() []model.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MatchRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Keys returns "qid/found_id" for every record, sorted.
func (s *memorySink) Keys() []string {
	recs := s.Records()
	keys := make([]string, 0, len(recs))
	for _, r := range recs {
		keys = append(keys, r.RecordID+"/"+r.FoundID)
	}
	sort.Strings(keys)
	return keys
}

func nosferatu() *model.CanonicalRecord {
	return &model.CanonicalRecord{ID: "Q160215", Title: "Nosferatu", Year: 1922, DurationSeconds: 5460, Language: "de"}
}

func nosferatuHits() []model.Candidate {
	return []model.Candidate{
		{ID: "a", Title: "Nosferatu 1922 full movie", DurationSeconds: 5500, UploaderID: "UC1", Uploader: "Silent Films", UploadDate: "2019-03-01"},
		{ID: "b", Title: "Nosferatu the Vampyre 1979", DurationSeconds: 5700},
		{ID: "c", Title: "Nosferatu 1922 full movie", DurationSeconds: 1200},
	}
}
