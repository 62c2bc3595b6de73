// Package library holds the labeled reference actions used for nearest-neighbour lookups.
package library

// Option applies a configuration option to the Library.
type Option func(*Library)

// WithStrictBins makes Add reject actions that are empty or whose sample count
// does not fill whole bins.
func WithStrictBins(strict bool) Option {
	return func(l *Library) {
		l.strict = strict
	}
}
