package api

const defaultMatchLimit = 5

type options struct {
	matchLimit int
}

// Option configures the Server.
type Option func(*options)

// WithMatchLimit sets how many matches /api/match returns without a limit
// parameter. Zero returns the full order.
func WithMatchLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.matchLimit = n
		}
	}
}
