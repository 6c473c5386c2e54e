package search

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/pkg/logger"
)

const (
	defaultExecutable = "yt-dlp"
	defaultResults    = 3
)

// YTDLPOption applies a configuration option to the YTDLP provider.
type YTDLPOption func(*YTDLP)

// WithExecutable sets the yt-dlp binary name or path.
func WithExecutable(path string) YTDLPOption {
	return func(y *YTDLP) {
		if strings.TrimSpace(path) != "" {
			y.executable = path
		}
	}
}

// WithResultsPerQuery sets how many search hits are requested per query.
func WithResultsPerQuery(n int) YTDLPOption {
	return func(y *YTDLP) {
		if n > 0 {
			y.results = n
		}
	}
}

// YTDLP searches YouTube through the yt-dlp command line tool, one
// subprocess per query.
type YTDLP struct {
	executable string
	results    int
	log        logger.Logger
}

// NewYTDLP creates a yt-dlp backed provider.
func NewYTDLP(opts ...YTDLPOption) *YTDLP {
	y := &YTDLP{
		executable: defaultExecutable,
		results:    defaultResults,
		log:        logger.Get().Named("ytdlp"),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// SearchURL returns the yt-dlp search pseudo-URL for query.
func (y *YTDLP) SearchURL(query string) string {
	return "ytsearch" + strconv.Itoa(y.results) + ":" + query
}

// Lookup runs one search and parses its JSON lines.
func (y *YTDLP) Lookup(ctx context.Context, query string) ([]model.Candidate, error) {
	cmd := ytdlp.New().
		SetExecutable(y.executable).
		DumpJSON().
		FlatPlaylist().
		NoWarnings()

	res, err := cmd.Run(ctx, y.SearchURL(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		return nil, fmt.Errorf("yt-dlp search failed: %w\nstderr: %s", err, stderr)
	}
	return ParseLines(strings.NewReader(res.Stdout))
}

// Search implements Provider. Failures are logged and yield no candidates.
func (y *YTDLP) Search(ctx context.Context, query string) []model.Candidate {
	out, err := y.Lookup(ctx, query)
	if err != nil {
		y.log.Debug(ctx, "search failed", logger.String("query", query), logger.Error(err))
	}
	return out
}

// CheckBinary resolves the yt-dlp executable on PATH.
func CheckBinary(path string) (string, error) {
	name := strings.TrimSpace(path)
	if name == "" {
		name = defaultExecutable
	}
	resolved, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrBinaryNotFound, name, err)
	}
	return resolved, nil
}
