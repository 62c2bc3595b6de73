package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("job queue full")
	ErrJobNotFound  = errors.New("job not found")
)
