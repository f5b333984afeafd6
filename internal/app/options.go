package service

import "github.com/okian/pcbvalues/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAxisCount sets the score vector length accepted by the service.
func WithAxisCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.axes = n
		}
	}
}

// WithWeights sets the per-axis ranking weights. Nil means unit weights.
func WithWeights(weights []float64) Option {
	return func(s *Service) {
		s.weights = append([]float64(nil), weights...)
		if len(weights) == 0 {
			s.weights = nil
		}
	}
}

// WithWorkerCount sets the number of import workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the import queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of remembered replay keys.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
