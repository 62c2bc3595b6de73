// Package ingest turns text records into labeled actions.
package ingest

import "errors"

// ErrMalformedRecord is returned when a numeric token does not parse as a float.
var ErrMalformedRecord = errors.New("malformed record")
