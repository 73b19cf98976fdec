package domain

import "errors"

// Sentinel error kinds. Components wrap these with fmt.Errorf("...: %w", ...)
// so callers can classify failures with errors.Is without depending on a
// specific package's concrete error type.
var (
	// ErrTransient marks a failure worth retrying (timeouts, connection
	// resets, upstream 5xx). The post-call pipeline's backoff loop does not
	// check it: high-priority tasks are retried on any error.
	ErrTransient = errors.New("transient error")

	// ErrInputInvalid marks a caller-supplied input that failed validation
	// and will never succeed on retry (empty call id, malformed payload).
	ErrInputInvalid = errors.New("invalid input")

	// ErrStateClosed is returned by the dialogue tracker when an operation
	// targets a call id whose state has already been ended.
	ErrStateClosed = errors.New("dialogue state closed")

	// ErrQueueFull is returned when a priority queue has reached its
	// configured depth limit and cannot accept another task.
	ErrQueueFull = errors.New("queue full")

	// ErrFatal marks a failure that is neither transient nor the caller's
	// fault (corrupt cache entry, programmer error) and should surface
	// rather than be silently retried.
	ErrFatal = errors.New("fatal error")
)
