package router

import "errors"

var (
	// ErrInvalidInput rejects a request before it enters the pipeline
	// (empty utterance, oversize payload). Surfaces to the caller as a
	// client error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady is returned when no artifact snapshot is published.
	// Startup validation makes this unreachable in a healthy process.
	ErrNotReady = errors.New("no active artifact snapshot")
)
