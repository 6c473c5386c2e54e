package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/vidmatch/internal/adapters/search"
	"github.com/okian/vidmatch/internal/domain/dedupe"
	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/internal/domain/query"
	"github.com/okian/vidmatch/internal/domain/scoring"
	"github.com/okian/vidmatch/pkg/logger"
	"github.com/okian/vidmatch/pkg/metrics"
)

// Default processor configuration constants.
const (
	defaultPersistThreshold   = 0.65
	defaultPreviewURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Sink receives accepted matches.
type Sink interface {
	Append(ctx context.Context, m model.MatchRecord) error
}

// Result summarizes one processed record.
type Result struct {
	RecordID   string
	Queries    int
	Duplicates int
	// Candidates are the deduplicated, ranked survivors of the duration gate.
	Candidates []model.ScoredCandidate
	// Best is the top-ranked candidate, nil when there is none.
	Best      *model.ScoredCandidate
	Persisted int
}

// Matched reports whether at least one match was persisted.
func (r *Result) Matched() bool { return r.Persisted > 0 }

// ProcessorOption applies a configuration option to the Processor.
type ProcessorOption func(*Processor)

// WithPersistThreshold sets the exclusive lower bound for persisted scores.
func WithPersistThreshold(t float64) ProcessorOption {
	return func(p *Processor) {
		if t >= 0 && t <= 1 {
			p.threshold = t
		}
	}
}

// WithDuplicatePolicy selects which occurrence of a duplicated candidate
// survives.
func WithDuplicatePolicy(policy dedupe.Policy) ProcessorOption {
	return func(p *Processor) {
		p.policy = policy
	}
}

// WithRequireKnownDuration rejects candidates without a duration at
// persistence time.
func WithRequireKnownDuration(require bool) ProcessorOption {
	return func(p *Processor) {
		p.requireKnownDuration = require
	}
}

// WithPreviewURLTemplate sets the preview URL format; %s is the candidate id.
func WithPreviewURLTemplate(tmpl string) ProcessorOption {
	return func(p *Processor) {
		if tmpl != "" {
			p.previewTemplate = tmpl
		}
	}
}

// WithClock sets the time source for checked_at.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithProcessorLogger sets a custom logger for the processor.
func WithProcessorLogger(l logger.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// Processor drives one record through fanout, search, scoring, dedupe,
// ranking and persistence. It is safe for concurrent use across records.
type Processor struct {
	gen      *query.Generator
	provider search.Provider
	scorer   *scoring.Scorer
	sink     Sink

	threshold            float64
	policy               dedupe.Policy
	requireKnownDuration bool
	previewTemplate      string
	now                  func() time.Time

	logger logger.Logger
}

// NewProcessor creates a record processor.
func NewProcessor(gen *query.Generator, provider search.Provider, scorer *scoring.Scorer, sink Sink, opts ...ProcessorOption) *Processor {
	p := &Processor{
		gen:             gen,
		provider:        provider,
		scorer:          scorer,
		sink:            sink,
		threshold:       defaultPersistThreshold,
		policy:          dedupe.FirstWins,
		previewTemplate: defaultPreviewURLTemplate,
		now:             time.Now,
		logger:          logger.Get().Named("processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process matches one record. Queries run sequentially. Any panic inside
// the pipeline is returned as ErrRecordPanic.
func (p *Processor) Process(ctx context.Context, rec *model.CanonicalRecord) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrRecordPanic, res.RecordID, r)
		}
	}()

	if err := rec.Validate(); err != nil {
		return res, err
	}
	res.RecordID = rec.ID

	collector := dedupe.NewCollector(dedupe.WithPolicy(p.policy))
	for _, q := range p.gen.Fanout(rec) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Queries++

		// Candidates are compared with the title the query searched for.
		ref := scoring.Reference{
			Title:           p.gen.SearchTitle(rec, q.Locale),
			Year:            rec.Year,
			DurationSeconds: rec.DurationSeconds,
		}
		for _, c := range p.provider.Search(ctx, q.Text) {
			sc := model.ScoredCandidate{Candidate: c, Score: p.scorer.Score(ref, &c), Query: q}
			metrics.RecordCandidateScored()
			if !collector.Add(sc) {
				metrics.RecordCandidateDuplicate()
			}
		}
	}
	res.Duplicates = collector.Duplicates()

	gate := p.scorer.Gate()
	for _, sc := range collector.Ranked() {
		if !gate.Passes(rec.DurationSeconds, sc.DurationSeconds) {
			continue
		}
		if p.requireKnownDuration && sc.DurationSeconds <= 0 {
			continue
		}
		res.Candidates = append(res.Candidates, sc)
	}
	if len(res.Candidates) > 0 {
		best := res.Candidates[0]
		res.Best = &best
	}

	checkedAt := p.now().UTC().Format(time.RFC3339)
	for i := range res.Candidates {
		sc := &res.Candidates[i]
		if sc.Score <= p.threshold {
			continue
		}
		if err := p.sink.Append(ctx, p.matchRecord(rec, sc, checkedAt)); err != nil {
			return res, fmt.Errorf("%w: %s/%s: %w", ErrPersist, rec.ID, sc.ID, err)
		}
		res.Persisted++
		metrics.RecordMatchPersisted()
		p.logger.Debug(ctx, "match persisted",
			logger.String("qid", rec.ID),
			logger.String("found_id", sc.ID),
			logger.Float64("score", sc.Score))
	}
	return res, nil
}

func (p *Processor) matchRecord(rec *model.CanonicalRecord, sc *model.ScoredCandidate, checkedAt string) model.MatchRecord {
	return model.MatchRecord{
		RecordID:      rec.ID,
		OriginalTitle: rec.Title,
		TargetYear:    rec.Year,
		FoundTitle:    sc.Title,
		FoundID:       sc.ID,
		FoundDuration: sc.DurationSeconds,
		ChannelID:     sc.UploaderID,
		Channel:       sc.Uploader,
		UploadDate:    sc.UploadDate,
		PreviewURL:    fmt.Sprintf(p.previewTemplate, sc.ID),
		CheckedAt:     checkedAt,
		Score:         sc.Score,
	}
}
