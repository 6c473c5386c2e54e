// Package config defines matcher configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with documented defaults.
// - Load layers defaults, an optional YAML file and VIDMATCH_* env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// InputPath is the catalog JSONL file, one canonical record per line.
	InputPath string `koanf:"input_path"`

	// OutputPath is the append-only match JSONL file.
	OutputPath string `koanf:"output_path"`

	// WorkerCount caps how many records are processed concurrently. It is
	// also the upper bound on concurrent provider calls.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the record queue between the dispatcher and workers.
	QueueSize int `koanf:"queue_size"`

	// QueryTimeout bounds one provider call; a timed out call yields no candidates.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// ResultsPerQuery is how many search hits the provider is asked for.
	ResultsPerQuery int `koanf:"results_per_query"`

	// YTDLPPath is the yt-dlp executable name or path.
	YTDLPPath string `koanf:"ytdlp_path"`

	// PersistThreshold is the exclusive lower bound for persisted scores.
	PersistThreshold float64 `koanf:"persist_threshold"`

	// DurationMinRatio and DurationMaxRatio bound candidate/target duration.
	DurationMinRatio float64 `koanf:"duration_min_ratio"`
	DurationMaxRatio float64 `koanf:"duration_max_ratio"`

	// YearTolerance is the largest year difference treated as the same release.
	YearTolerance int `koanf:"year_tolerance"`

	// YearPenaltyScore is returned when the years diverge beyond tolerance.
	YearPenaltyScore float64 `koanf:"year_penalty_score"`

	// TokenWeight and SequenceWeight blend the two text similarity scores.
	TokenWeight    float64 `koanf:"token_weight"`
	SequenceWeight float64 `koanf:"sequence_weight"`

	// FallbackLocale picks the localized title when the query locale has none.
	FallbackLocale string `koanf:"fallback_locale"`

	// Locales restricts and orders the fanout locales. Empty means all.
	Locales []string `koanf:"locales"`

	// JunkWords replaces the default junk-word set when non-empty.
	JunkWords []string `koanf:"junk_words"`

	// FoldDiacritics maps accented Latin letters to ASCII before tokenizing.
	FoldDiacritics bool `koanf:"fold_diacritics"`

	// KeepBestDuplicate keeps the highest score seen for a duplicated
	// candidate instead of the first occurrence.
	KeepBestDuplicate bool `koanf:"keep_best_duplicate"`

	// RequireKnownDuration rejects candidates with an unknown duration at
	// persistence time.
	RequireKnownDuration bool `koanf:"require_known_duration"`

	// PreviewURLTemplate renders the candidate preview URL; %s is the id.
	PreviewURLTemplate string `koanf:"preview_url_template"`

	// MetricsAddr serves /healthz, /metrics and /stats when non-empty.
	MetricsAddr string `koanf:"metrics_addr"`

	// Progress selects progress reporting: auto, bar, log or off.
	Progress string `koanf:"progress"`

	// ProgressInterval is the period of progress log lines in log mode.
	ProgressInterval time.Duration `koanf:"progress_interval"`
}

// Default values.
const (
	DefaultWorkerCount        = 10
	DefaultQueueSize          = 256
	DefaultQueryTimeout       = 45 * time.Second
	DefaultResultsPerQuery    = 3
	DefaultPersistThreshold   = 0.65
	DefaultDurationMinRatio   = 0.7
	DefaultDurationMaxRatio   = 1.3
	DefaultYearTolerance      = 1
	DefaultYearPenaltyScore   = 0.1
	DefaultTokenWeight        = 0.7
	DefaultSequenceWeight     = 0.3
	DefaultFallbackLocale     = "en"
	DefaultPreviewURLTemplate = "https://www.youtube.com/watch?v=%s"
	DefaultProgressInterval   = 10 * time.Second
)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		OutputPath:         "matches.jsonl",
		WorkerCount:        DefaultWorkerCount,
		QueueSize:          DefaultQueueSize,
		QueryTimeout:       DefaultQueryTimeout,
		ResultsPerQuery:    DefaultResultsPerQuery,
		YTDLPPath:          "yt-dlp",
		PersistThreshold:   DefaultPersistThreshold,
		DurationMinRatio:   DefaultDurationMinRatio,
		DurationMaxRatio:   DefaultDurationMaxRatio,
		YearTolerance:      DefaultYearTolerance,
		YearPenaltyScore:   DefaultYearPenaltyScore,
		TokenWeight:        DefaultTokenWeight,
		SequenceWeight:     DefaultSequenceWeight,
		FallbackLocale:     DefaultFallbackLocale,
		PreviewURLTemplate: DefaultPreviewURLTemplate,
		Progress:           "auto",
		ProgressInterval:   DefaultProgressInterval,
	}
}
