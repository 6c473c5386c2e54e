package sink

import "errors"

// Sink errors.
var (
	ErrClosed   = errors.New("sink closed")
	ErrLocked   = errors.New("sink output locked by another process")
	ErrOpenSink = errors.New("open sink")
	ErrWrite    = errors.New("write match")
	ErrUnusable = errors.New("sink unusable after failed rollback")
)
