package search

import "errors"

// Search adapter errors.
var (
	ErrBinaryNotFound  = errors.New("search binary not found")
	ErrMalformedOutput = errors.New("malformed provider output")
	ErrProviderPanic   = errors.New("provider panicked")
)
