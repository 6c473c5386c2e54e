package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func entry(line int) Item {
	return Item{Line: line, Raw: []byte(`{"id":"Q1","title":"Nosferatu"}`)}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, entry(1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	it := <-q.Dequeue(ctx)
	if it.Line != 1 {
		t.Errorf("expected line 1, got %d", it.Line)
	}
}

func TestInMemoryQueue_BlocksWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Enqueue(ctx, entry(1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(short, entry(2)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded on full queue, got %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Enqueue(ctx, entry(3)) }()

	ch := q.Dequeue(ctx)
	if it := <-ch; it.Line != 1 {
		t.Errorf("expected line 1, got %d", it.Line)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected blocked enqueue to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked enqueue never completed")
	}
	if it := <-ch; it.Line != 3 {
		t.Errorf("expected line 3, got %d", it.Line)
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := q.Enqueue(ctx, entry(i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := q.Enqueue(ctx, entry(4)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var got []int
	for it := range q.Dequeue(ctx) {
		got = append(got, it.Line)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("expected lines 1..3 in order, got %v", got)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()
	const total = 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int]int)
	)
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range q.Dequeue(ctx) {
				mu.Lock()
				seen[it.Line]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < total; i++ {
		if err := q.Enqueue(ctx, entry(i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	_ = q.Close()
	wg.Wait()

	if len(seen) != total {
		t.Fatalf("expected %d distinct items, got %d", total, len(seen))
	}
	for line, n := range seen {
		if n != 1 {
			t.Errorf("line %d delivered %d times", line, n)
		}
	}
}

func TestInMemoryQueue_DequeueStopsOnCancel(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected no item after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue channel not closed after cancel")
	}
}
