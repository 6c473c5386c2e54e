package service

import "errors"

// Record processing errors.
var (
	ErrRecordPanic = errors.New("record processing panicked")
	ErrPersist     = errors.New("persist match")
	ErrNoRecords   = errors.New("no catalog records")
)
