package main

import (
	"github.com/okian/vidmatch/internal/adapters/search"
	service "github.com/okian/vidmatch/internal/app"
	"github.com/okian/vidmatch/internal/config"
	"github.com/okian/vidmatch/internal/domain/dedupe"
	"github.com/okian/vidmatch/internal/domain/query"
	"github.com/okian/vidmatch/internal/domain/scoring"
)

func newGenerator(cfg *config.Config) *query.Generator {
	opts := []query.Option{query.WithFallbackLocale(cfg.FallbackLocale)}
	if len(cfg.Locales) > 0 {
		opts = append(opts, query.WithLocales(cfg.Locales))
	}
	return query.NewGenerator(opts...)
}

func newScorer(cfg *config.Config) *scoring.Scorer {
	var junk []string
	if len(cfg.JunkWords) > 0 {
		junk = cfg.JunkWords
	}
	return scoring.NewScorer(
		scoring.WithDurationGate(scoring.DurationGate{MinRatio: cfg.DurationMinRatio, MaxRatio: cfg.DurationMaxRatio}),
		scoring.WithYearPenalty(cfg.YearTolerance, cfg.YearPenaltyScore),
		scoring.WithWeights(cfg.TokenWeight, cfg.SequenceWeight),
		scoring.WithNormalizer(scoring.NewNormalizer(junk, cfg.FoldDiacritics)),
	)
}

func newProvider(cfg *config.Config, executable string) search.Provider {
	yt := search.NewYTDLP(
		search.WithExecutable(executable),
		search.WithResultsPerQuery(cfg.ResultsPerQuery),
	)
	return search.Bounded(yt, cfg.QueryTimeout)
}

func newProcessor(cfg *config.Config, provider search.Provider, sink service.Sink) *service.Processor {
	policy := dedupe.FirstWins
	if cfg.KeepBestDuplicate {
		policy = dedupe.KeepBest
	}
	return service.NewProcessor(newGenerator(cfg), provider, newScorer(cfg), sink,
		service.WithPersistThreshold(cfg.PersistThreshold),
		service.WithDuplicatePolicy(policy),
		service.WithRequireKnownDuration(cfg.RequireKnownDuration),
		service.WithPreviewURLTemplate(cfg.PreviewURLTemplate),
	)
}
