package config

import (
	"fmt"
	"strings"

	"github.com/okian/vidmatch/internal/domain/query"
	"github.com/okian/vidmatch/pkg/logger"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateLogging,
		c.validatePool,
		c.validateScoring,
		c.validateLocales,
		c.validateOutput,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, key, fmt.Sprintf(format, args...))
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.LogFormat) {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return invalid("log_format", "must be text or json, got %q", c.LogFormat)
	}
	switch c.Progress {
	case "auto", "bar", "log", "off":
	default:
		return invalid("progress", "must be auto, bar, log or off, got %q", c.Progress)
	}
	return nil
}

func (c *Config) validatePool() error {
	if c.WorkerCount < 1 {
		return invalid("worker_count", "must be at least 1, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return invalid("queue_size", "must be at least 1, got %d", c.QueueSize)
	}
	if c.QueryTimeout <= 0 {
		return invalid("query_timeout", "must be positive, got %s", c.QueryTimeout)
	}
	if c.ResultsPerQuery < 1 {
		return invalid("results_per_query", "must be at least 1, got %d", c.ResultsPerQuery)
	}
	if strings.TrimSpace(c.YTDLPPath) == "" {
		return invalid("ytdlp_path", "must not be empty")
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.PersistThreshold < 0 || c.PersistThreshold > 1 {
		return invalid("persist_threshold", "must be within [0, 1], got %v", c.PersistThreshold)
	}
	if c.DurationMinRatio <= 0 || c.DurationMaxRatio < c.DurationMinRatio {
		return invalid("duration_min_ratio", "and duration_max_ratio must satisfy 0 < min <= max, got %v..%v",
			c.DurationMinRatio, c.DurationMaxRatio)
	}
	if c.YearTolerance < 0 {
		return invalid("year_tolerance", "must not be negative, got %d", c.YearTolerance)
	}
	if c.YearPenaltyScore < 0 || c.YearPenaltyScore > 1 {
		return invalid("year_penalty_score", "must be within [0, 1], got %v", c.YearPenaltyScore)
	}
	if c.TokenWeight < 0 || c.SequenceWeight < 0 || c.TokenWeight+c.SequenceWeight > 1.000001 {
		return invalid("token_weight", "and sequence_weight must be non-negative and sum to at most 1")
	}
	return nil
}

func (c *Config) validateLocales() error {
	if _, ok := query.LookupLocale(c.FallbackLocale); !ok {
		return invalid("fallback_locale", "%q is not a supported locale", c.FallbackLocale)
	}
	for _, code := range c.Locales {
		if _, ok := query.LookupLocale(code); !ok {
			return invalid("locales", "%q is not a supported locale", code)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return invalid("output_path", "must not be empty")
	}
	if strings.Count(c.PreviewURLTemplate, "%s") != 1 {
		return invalid("preview_url_template", "must contain exactly one %%s, got %q", c.PreviewURLTemplate)
	}
	return nil
}
