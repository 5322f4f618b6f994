package domain

import "errors"

var (
	// ErrNotFound indicates a cache or store lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrStorage indicates an event log read or write failure. Unlike
	// provider errors it always aborts the enclosing operation: silently
	// losing feedback data corrupts the learning loop.
	ErrStorage = errors.New("storage failure")

	// ErrValidation indicates a malformed domain value rejected at
	// construction time.
	ErrValidation = errors.New("validation failed")

	// ErrProvider indicates an external provider call failed after
	// exhausting its retry budget.
	ErrProvider = errors.New("provider unavailable")

	// ErrContextDone indicates the operation was abandoned because its
	// context was cancelled.
	ErrContextDone = errors.New("context cancelled")
)
