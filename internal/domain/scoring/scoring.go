// Package scoring computes how likely a search hit is the catalog work it
// was searched for.
package scoring

import (
	"strconv"

	"github.com/okian/vidmatch/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultYearTolerance    = 1
	defaultYearPenaltyScore = 0.1
	defaultTokenWeight      = 0.7
	defaultSequenceWeight   = 0.3
)

// Verdict names the step that decided a score.
type Verdict string

// Scoring verdicts.
const (
	VerdictDuration       Verdict = "duration_gate"
	VerdictYear           Verdict = "year_penalty"
	VerdictEmptyReference Verdict = "empty_reference"
	VerdictText           Verdict = "text_similarity"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithDurationGate sets the duration band used for the early reject.
func WithDurationGate(g DurationGate) Option {
	return func(s *Scorer) {
		if g.MinRatio > 0 && g.MaxRatio >= g.MinRatio {
			s.gate = g
		}
	}
}

// WithYearPenalty sets the tolerated year difference and the score
// returned beyond it.
func WithYearPenalty(tolerance int, penalty float64) Option {
	return func(s *Scorer) {
		if tolerance >= 0 {
			s.yearTolerance = tolerance
		}
		if penalty >= 0 && penalty <= 1 {
			s.yearPenalty = penalty
		}
	}
}

// WithWeights sets the blend of token coverage and sequence similarity.
func WithWeights(token, sequence float64) Option {
	return func(s *Scorer) {
		if token >= 0 && sequence >= 0 && token+sequence <= 1 {
			s.tokenWeight = token
			s.sequenceWeight = sequence
		}
	}
}

// WithNormalizer sets the title tokenizer.
func WithNormalizer(n *Normalizer) Option {
	return func(s *Scorer) {
		if n != nil {
			s.norm = n
		}
	}
}

// Reference is the side a candidate is compared against.
type Reference struct {
	Title           string
	Year            int // 0 when unknown
	DurationSeconds int // 0 when unknown
}

// ReferenceOf builds a reference from the record's primary title.
func ReferenceOf(rec *model.CanonicalRecord) Reference {
	return Reference{Title: rec.Title, Year: rec.Year, DurationSeconds: rec.DurationSeconds}
}

// Breakdown records every intermediate value of one scoring pass.
type Breakdown struct {
	Verdict         Verdict
	DurationRatio   float64 // 0 when either duration is unknown
	CandidateYear   int     // 0 when the title carries no year
	YearDiff        int
	ReferenceTokens []string
	CandidateTokens []string
	Common          []string
	TokenScore      float64
	SequenceScore   float64
	Score           float64
}

// Scorer is a pure, deterministic title matcher. It is safe for
// concurrent use.
type Scorer struct {
	gate           DurationGate
	yearTolerance  int
	yearPenalty    float64
	tokenWeight    float64
	sequenceWeight float64
	norm           *Normalizer
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		gate:           DefaultDurationGate(),
		yearTolerance:  defaultYearTolerance,
		yearPenalty:    defaultYearPenaltyScore,
		tokenWeight:    defaultTokenWeight,
		sequenceWeight: defaultSequenceWeight,
		norm:           NewNormalizer(nil, false),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Gate returns the duration gate used for the early reject.
func (s *Scorer) Gate() DurationGate { return s.gate }

// Score returns the similarity of c to ref in [0, 1], rounded to two
// decimals.
func (s *Scorer) Score(ref Reference, c *model.Candidate) float64 {
	return s.Explain(ref, c).Score
}

// Explain scores c against ref and returns the intermediate values.
func (s *Scorer) Explain(ref Reference, c *model.Candidate) Breakdown {
	var b Breakdown

	ratio, known := s.gate.Ratio(ref.DurationSeconds, c.DurationSeconds)
	b.DurationRatio = ratio
	if known && !s.gate.Passes(ref.DurationSeconds, c.DurationSeconds) {
		b.Verdict, b.Score = VerdictDuration, 0.0
		return b
	}

	b.CandidateYear = ExtractYear(c.Title)
	if b.CandidateYear != 0 && ref.Year != 0 {
		b.YearDiff = abs(b.CandidateYear - ref.Year)
		if b.YearDiff > s.yearTolerance {
			b.Verdict, b.Score = VerdictYear, s.yearPenalty
			return b
		}
	}

	refTokens := s.norm.Tokens(ref.Title)
	candTokens := s.norm.Tokens(c.Title)
	b.ReferenceTokens = refTokens.Sorted()
	b.CandidateTokens = candTokens.Sorted()
	b.Common = refTokens.Intersect(candTokens)
	if len(refTokens) == 0 {
		b.Verdict, b.Score = VerdictEmptyReference, 0.0
		return b
	}

	b.TokenScore = float64(len(b.Common)) / float64(len(refTokens))
	b.SequenceScore = SequenceRatio(refTokens.Joined(), candTokens.Joined())
	// Explicit conversions keep the products from being fused.
	b.Score = round2(float64(b.TokenScore*s.tokenWeight) + float64(b.SequenceScore*s.sequenceWeight))
	b.Verdict = VerdictText
	return b
}

// round2 rounds half to even on the exact binary value: 0.125 becomes 0.12
// and 2.675, stored as 2.67499..., becomes 2.67.
func round2(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
