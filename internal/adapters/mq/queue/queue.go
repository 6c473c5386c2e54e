// Package queue hands catalog entries from the dispatcher to workers.
//
// The queue is bounded: Enqueue blocks while it is full, which keeps the
// dispatcher at most capacity entries ahead of the workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/vidmatch/internal/adapters/catalog"
	"github.com/okian/vidmatch/pkg/metrics"
)

const defaultQueueCapacity = 256

// Item is the payload flowing through the queue.
type Item = catalog.Entry

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an item, waiting for space. It fails if the queue is
	// closed or ctx ends first.
	Enqueue(ctx context.Context, it Item) error

	// Dequeue returns a channel that receives items as they become
	// available. The channel is closed once the queue is closed and
	// drained, or ctx ends.
	Dequeue(ctx context.Context) <-chan Item

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Buffered items are still delivered.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Item
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Item, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, it Item) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	select {
	case q.items <- it:
		metrics.UpdateQueueSize(len(q.items))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue returns a channel that receives items as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Item {
	out := make(chan Item)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case it, ok := <-q.items:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.items))
				select {
				case out <- it:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued items.
func (q *InMemoryQueue) Len() int {
	return len(q.items)
}

// Close stops accepting items. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}
