package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/okian/vidmatch/internal/adapters/mq/queue"
	"github.com/okian/vidmatch/pkg/logger"
	"github.com/okian/vidmatch/pkg/metrics"
)

// Handler processes one queued item end to end.
type Handler interface {
	Handle(ctx context.Context, it queue.Item)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, it queue.Item)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, it queue.Item) { f(ctx, it) }

// Queue defines how workers receive items.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Item
}

// Worker processes items until its queue is drained.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current item.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	processed atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		handler:  h,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case it, ok := <-items:
			if !ok {
				return
			}
			w.process(ctx, it)
		}
	}
}

// process runs the handler, converting a panic into a logged failure so
// one item never takes the worker down.
func (w *InMemoryWorker) process(ctx context.Context, it queue.Item) {
	metrics.WorkerBusy(1)
	defer metrics.WorkerBusy(-1)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "handler panicked",
				logger.Int("line", it.Line),
				logger.Any("panic", r))
		}
		w.processed.Add(1)
	}()
	w.handler.Handle(ctx, it)
}

// Processed returns the number of items this worker has handled.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker after its current item.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one selects
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, h Handler) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, h, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	for _, w := range p.workers {
		<-w.done
	}
}

// Processed returns the number of items handled across the pool.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Shutdown closes the queue, if it can be closed, and waits for the
// workers to finish their current items or for ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("pool shutdown: %w", ctx.Err())
		}
	}
	return nil
}
