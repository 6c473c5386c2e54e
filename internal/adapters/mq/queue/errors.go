package queue

import "errors"

// ErrClosed is returned when enqueuing to a closed queue.
var ErrClosed = errors.New("queue closed")
