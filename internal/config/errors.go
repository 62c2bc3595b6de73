package config

import "errors"

// Errors returned by Load and Validate; match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrLoadConfig    = errors.New("config: cannot load source")
)
