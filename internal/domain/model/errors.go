package model

import "errors"

// Sentinel kinds for action shape errors.
var (
	ErrInvalidCoordinate = errors.New("invalid joint/bin coordinate")
	ErrIndexOverrun      = errors.New("coordinate beyond action length")
	ErrPartialBin        = errors.New("action length is not a multiple of joints per bin")
	ErrEmptyAction       = errors.New("action has no samples")
)
