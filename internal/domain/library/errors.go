package library

import "errors"

// Sentinel kinds for library errors.
var (
	ErrUnknownLabel = errors.New("unknown label")
)
