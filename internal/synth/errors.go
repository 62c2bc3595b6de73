package synth

import "errors"

// Sentinel kinds for synth errors.
var (
	ErrInvalidConfig = errors.New("invalid synth config")
	ErrRemote        = errors.New("remote request failed")
)
