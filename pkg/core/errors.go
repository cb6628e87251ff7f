package core

import "errors"

// Error kinds surfaced by the capture and wardriving pipelines. Call sites
// wrap them with context; callers match with errors.Is.
var (
	// ErrInvalidArgument is returned for empty or too-short frames and for
	// wardriving records logged without an acquired GPS fix.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceExhausted is returned when a single record can never fit
	// in a sink buffer.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrIO is returned when a file or serial write is short or fails.
	ErrIO = errors.New("i/o failure")

	// ErrFormattingOverflow is returned when a CSV line exceeds the line buffer.
	ErrFormattingOverflow = errors.New("formatting overflow")
)
