// Package sink persists accepted matches as append-only JSON lines.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/pkg/logger"
	"github.com/okian/vidmatch/pkg/metrics"
)

const defaultFileMode os.FileMode = 0o644

// Option applies a configuration option to the JSONLSink.
type Option func(*JSONLSink)

// WithFileMode sets the permissions of a newly created output file.
func WithFileMode(mode os.FileMode) Option {
	return func(s *JSONLSink) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// appendFile is the part of *os.File the sink writes through.
type appendFile interface {
	Write(p []byte) (int, error)
	Sync() error
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
	Close() error
}

// JSONLSink appends one match per line to a single file. It is safe for
// concurrent use; every Append is durable when it returns nil.
type JSONLSink struct {
	path string
	mode os.FileMode

	mu     sync.Mutex
	file   appendFile
	lock   *flock.Flock
	closed bool
	broken error // set when a failed append could not be rolled back

	written atomic.Int64
	log     logger.Logger
}

// Open opens path for appending, creating it if needed, and takes an
// exclusive advisory lock on path+".lock" for the life of the sink.
func Open(path string, opts ...Option) (*JSONLSink, error) {
	s := &JSONLSink{
		path: path,
		mode: defaultFileMode,
		lock: flock.New(path + ".lock"),
		log:  logger.Get().Named("sink"),
	}
	for _, opt := range opts {
		opt(s)
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %w", ErrOpenSink, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.mode)
	if err != nil {
		_ = s.lock.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrOpenSink, err)
	}
	s.file = f
	return s, nil
}

// Path returns the output file path.
func (s *JSONLSink) Path() string { return s.path }

// Written returns the number of matches appended so far.
func (s *JSONLSink) Written() int64 { return s.written.Load() }

// Append serializes m as one line, writes it and forces it to stable
// storage before returning. The lock is held for this one record only.
// A failed write or sync is rolled back to the previous end of file so
// the output never holds a partial line.
func (s *JSONLSink) Append(ctx context.Context, m model.MatchRecord) error {
	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	line = append(line, '\n')

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.broken != nil {
		return fmt.Errorf("%w: %w", ErrUnusable, s.broken)
	}

	// O_APPEND plus the process lock make the size the write offset.
	info, err := s.file.Stat()
	if err != nil {
		metrics.RecordSinkError()
		return fmt.Errorf("%w: stat: %w", ErrWrite, err)
	}
	size := info.Size()

	if _, err := s.file.Write(line); err != nil {
		s.rollback(ctx, size, m.RecordID, "append failed", err)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := s.file.Sync(); err != nil {
		s.rollback(ctx, size, m.RecordID, "fsync failed", err)
		return fmt.Errorf("%w: sync: %w", ErrWrite, err)
	}

	s.written.Add(1)
	metrics.RecordSinkWrite(time.Since(start).Seconds())
	return nil
}

// rollback cuts the file back to size. When that fails too the sink
// refuses further appends. Callers hold s.mu.
func (s *JSONLSink) rollback(ctx context.Context, size int64, qid, msg string, cause error) {
	metrics.RecordSinkError()
	s.log.Error(ctx, msg, logger.String("qid", qid), logger.Error(cause))

	err := s.file.Truncate(size)
	if err == nil {
		err = s.file.Sync()
	}
	if err != nil {
		s.broken = err
		s.log.Error(ctx, "rollback failed, sink disabled",
			logger.String("path", s.path),
			logger.Int64("offset", size),
			logger.Error(err),
		)
	}
}

// Close closes the file and releases the lock. It is safe to call more
// than once.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.file.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		return fmt.Errorf("close sink: %w", err)
	}
	return nil
}
