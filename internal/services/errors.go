package services

import "errors"

var (
	// ErrNotFound means the target content record does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrSearchUnavailable means the search index cannot be reached; callers
	// should answer 503, never fall back to scanning the record store.
	ErrSearchUnavailable = errors.New("search service temporarily unavailable")
	// ErrInvalidInput covers malformed or out-of-range request values.
	ErrInvalidInput = errors.New("invalid input")
)
