package api

type serverConfig struct {
	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*serverConfig)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}
