// Package search adapts external video search backends to a single
// query-in, candidates-out contract.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/pkg/logger"
	"github.com/okian/vidmatch/pkg/metrics"
)

// Provider returns the candidates for one query. It never fails: any
// problem yields an empty result.
type Provider interface {
	Search(ctx context.Context, query string) []model.Candidate
}

// Lookuper is implemented by providers that can say why a search came
// back empty.
type Lookuper interface {
	Lookup(ctx context.Context, query string) ([]model.Candidate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, query string) []model.Candidate

// Search calls f.
func (f ProviderFunc) Search(ctx context.Context, query string) []model.Candidate {
	return f(ctx, query)
}

// BoundedProvider enforces a per-query deadline on a wrapped provider.
type BoundedProvider struct {
	inner   Provider
	timeout time.Duration
	log     logger.Logger
}

// Bounded wraps p so each query returns within timeout, even if p ignores
// its context. Timeouts, cancellation, errors and panics become an empty
// result.
func Bounded(p Provider, timeout time.Duration) *BoundedProvider {
	return &BoundedProvider{
		inner:   p,
		timeout: timeout,
		log:     logger.Get().Named("search"),
	}
}

type lookupResult struct {
	candidates []model.Candidate
	err        error
}

// Search implements Provider.
func (b *BoundedProvider) Search(ctx context.Context, query string) []model.Candidate {
	start := time.Now()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	// Buffered so an abandoned call can still finish and be collected.
	done := make(chan lookupResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- lookupResult{err: fmt.Errorf("%w: %v", ErrProviderPanic, r)}
			}
		}()
		done <- b.lookup(ctx, query)
	}()

	select {
	case <-ctx.Done():
		metrics.RecordQuery(abandonedResult(ctx.Err()), time.Since(start).Seconds())
		b.log.Debug(ctx, "query abandoned",
			logger.String("query", query),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(ctx.Err()))
		return nil
	case res := <-done:
		elapsed := time.Since(start).Seconds()
		switch {
		case errors.Is(res.err, context.DeadlineExceeded), errors.Is(res.err, context.Canceled):
			metrics.RecordQuery(abandonedResult(res.err), elapsed)
		case res.err != nil:
			metrics.RecordQuery(metrics.QueryError, elapsed)
			b.log.Warn(ctx, "query failed", logger.String("query", query), logger.Error(res.err))
		case len(res.candidates) == 0:
			metrics.RecordQuery(metrics.QueryEmpty, elapsed)
		default:
			metrics.RecordQuery(metrics.QueryOK, elapsed)
		}
		return res.candidates
	}
}

func (b *BoundedProvider) lookup(ctx context.Context, query string) lookupResult {
	if l, ok := b.inner.(Lookuper); ok {
		c, err := l.Lookup(ctx, query)
		return lookupResult{candidates: c, err: err}
	}
	return lookupResult{candidates: b.inner.Search(ctx, query)}
}

// abandonedResult labels a query cut short by its context. Only the
// per-query deadline counts as a timeout; a cancelled run does not.
func abandonedResult(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.QueryTimeout
	}
	return metrics.QueryCancelled
}
