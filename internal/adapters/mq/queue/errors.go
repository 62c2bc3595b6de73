// Package queue holds classification jobs waiting for a worker.
package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("queue full")
	ErrClosed = errors.New("queue closed")
)
