// Package service runs the catalog through the matcher on a bounded pool
// of workers and keeps the run statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/vidmatch/internal/adapters/catalog"
	"github.com/okian/vidmatch/internal/adapters/mq/queue"
	"github.com/okian/vidmatch/internal/adapters/mq/worker"
	"github.com/okian/vidmatch/internal/adapters/progress"
	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/internal/domain/types"
	"github.com/okian/vidmatch/pkg/logger"
	"github.com/okian/vidmatch/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount  = 10
	defaultQueueSize    = 256
	defaultDrainTimeout = 10 * time.Second
)

// RecordProcessor matches one catalog record.
type RecordProcessor interface {
	Process(ctx context.Context, rec *model.CanonicalRecord) (Result, error)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of records processed concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(r progress.Reporter) Option {
	return func(s *Service) {
		if r != nil {
			s.progress = r
		}
	}
}

// WithDrainTimeout bounds how long a cancelled run waits for in-flight
// records before returning.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.drainTimeout = d
		}
	}
}

// WithRunID tags the summary and stats with a run identifier.
func WithRunID(id string) Option {
	return func(s *Service) {
		s.runID = id
	}
}

// Service is the orchestrator. One Service runs one catalog at a time.
type Service struct {
	processor    RecordProcessor
	workerCount  int
	queueSize    int
	drainTimeout time.Duration
	runID        string

	progress progress.Reporter
	logger   logger.Logger

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	elapsed   time.Duration

	total      atomic.Int64
	processed  atomic.Int64
	matched    atomic.Int64
	unmatched  atomic.Int64
	failed     atomic.Int64
	persisted  atomic.Int64
	queries    atomic.Int64
	candidates atomic.Int64
	cancelled  atomic.Bool
}

// New constructs a Service around a record processor.
func New(p RecordProcessor, opts ...Option) *Service {
	s := &Service{
		processor:    p,
		workerCount:  defaultWorkerCount,
		queueSize:    defaultQueueSize,
		drainTimeout: defaultDrainTimeout,
		progress:     progress.Nop{},
		logger:       logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run dispatches every entry to the worker pool and waits for all of them.
// Failed records are counted and skipped, never retried. If ctx ends,
// undispatched entries are dropped, in-flight records get the drain
// timeout to finish, and the partial summary is returned with ctx's error.
func (s *Service) Run(ctx context.Context, entries []catalog.Entry) (types.Summary, error) {
	if len(entries) == 0 {
		return s.GetStats(), ErrNoRecords
	}
	if err := s.begin(len(entries)); err != nil {
		return s.GetStats(), err
	}

	s.logger.Info(ctx, "batch started",
		logger.Int("records", len(entries)),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize))
	s.progress.Start(len(entries))

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, worker.HandlerFunc(s.handle))
	pool.Start(ctx)

	for _, e := range entries {
		if err := q.Enqueue(ctx, e); err != nil {
			s.logger.Warn(ctx, "dispatch stopped", logger.Int("line", e.Line), logger.Error(err))
			break
		}
	}
	if ctx.Err() != nil {
		sctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
		if err := pool.Shutdown(sctx); err != nil {
			s.logger.Warn(ctx, "workers still busy after drain timeout",
				logger.Duration("timeout", s.drainTimeout), logger.Error(err))
		}
		cancel()
	} else {
		_ = q.Close()
		pool.Wait()
	}

	s.end()

	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.cancelled.Store(true)
		err = fmt.Errorf("run interrupted: %w", ctxErr)
	}

	summary := s.GetStats()
	s.progress.Finish(summary)
	s.logger.Info(ctx, "batch finished",
		logger.Int("processed", summary.Processed),
		logger.Int("matched", summary.Matched),
		logger.Int("unmatched", summary.Unmatched),
		logger.Int("failed", summary.Failed),
		logger.Int("persisted", summary.Persisted),
		logger.Duration("elapsed", summary.Elapsed),
		logger.Bool("cancelled", summary.Cancelled))
	return summary, err
}

func (s *Service) begin(total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("run already in progress")
	}
	s.running = true
	s.startedAt = time.Now()
	s.elapsed = 0
	for _, c := range []*atomic.Int64{&s.processed, &s.matched, &s.unmatched, &s.failed, &s.persisted, &s.queries, &s.candidates} {
		c.Store(0)
	}
	s.cancelled.Store(false)
	s.total.Store(int64(total))
	metrics.UpdateRecordsTotal(total)
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.running = false
	s.elapsed = time.Since(s.startedAt)
	s.mu.Unlock()
}

// handle decodes and processes one entry on a worker goroutine.
func (s *Service) handle(ctx context.Context, it queue.Item) {
	start := time.Now()

	rec, err := catalog.Decode(it)
	if err != nil {
		s.fail(ctx, it, "", 0, err, start)
		return
	}

	res, err := s.processor.Process(ctx, &rec)
	s.queries.Add(int64(res.Queries))
	s.candidates.Add(int64(len(res.Candidates)))
	// Lines already written before a sink error stay in the output, so they
	// count as persisted even when the record itself fails.
	s.persisted.Add(int64(res.Persisted))
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Abandoned by cancellation; neither a failure nor processed.
			return
		}
		s.fail(ctx, it, rec.Title, res.Persisted, err, start)
		return
	}

	outcome := metrics.OutcomeUnmatched
	if res.Matched() {
		outcome = metrics.OutcomeMatched
		s.matched.Add(1)
	} else {
		s.unmatched.Add(1)
	}
	s.processed.Add(1)
	metrics.RecordRecordProcessed(outcome, time.Since(start).Seconds())

	fields := []logger.Field{
		logger.String("qid", rec.ID),
		logger.Int("queries", res.Queries),
		logger.Int("candidates", len(res.Candidates)),
		logger.Int("persisted", res.Persisted),
	}
	if res.Best != nil {
		fields = append(fields,
			logger.String("best_id", res.Best.ID),
			logger.Float64("best_score", res.Best.Score))
	}
	s.logger.Debug(ctx, "record processed", fields...)
	s.progress.Record(rec.Title, s.GetStats())
}

func (s *Service) fail(ctx context.Context, it queue.Item, title string, persisted int, err error, start time.Time) {
	s.failed.Add(1)
	s.processed.Add(1)
	metrics.RecordRecordProcessed(metrics.OutcomeFailed, time.Since(start).Seconds())
	s.logger.Error(ctx, "record skipped",
		logger.Int("line", it.Line),
		logger.String("raw", truncateRaw(it.Raw)),
		logger.Int("persisted", persisted),
		logger.Error(err))
	s.progress.Record(title, s.GetStats())
}

// GetStats returns a snapshot of the current or last run. Counters are
// read independently, so a snapshot taken mid-run may be off by a record.
func (s *Service) GetStats() types.Summary {
	s.mu.Lock()
	running := s.running
	elapsed := s.elapsed
	if running {
		elapsed = time.Since(s.startedAt)
	}
	s.mu.Unlock()

	return types.Summary{
		RunID:      s.runID,
		Running:    running,
		Cancelled:  s.cancelled.Load(),
		Total:      int(s.total.Load()),
		Processed:  int(s.processed.Load()),
		Matched:    int(s.matched.Load()),
		Unmatched:  int(s.unmatched.Load()),
		Failed:     int(s.failed.Load()),
		Persisted:  int(s.persisted.Load()),
		Queries:    int(s.queries.Load()),
		Candidates: int(s.candidates.Load()),
		Elapsed:    elapsed,
	}
}

const maxRawLog = 200

func truncateRaw(raw []byte) string {
	if len(raw) <= maxRawLog {
		return string(raw)
	}
	return string(raw[:maxRawLog]) + "..."
}
