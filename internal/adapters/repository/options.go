package repository

import "github.com/okian/pcbvalues/pkg/logger"

const defaultAxisCount = 7

type settings struct {
	axes int
	log  logger.Logger
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithAxisCount sets the required length of every stats vector.
func WithAxisCount(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.axes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{axes: defaultAxisCount}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("store")
	}
	return s
}
