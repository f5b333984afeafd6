package worker

import (
	"github.com/okian/pcbvalues/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

func withCounters(c *counters) Option {
	return func(w *InMemoryWorker) { w.counts = c }
}

// Stats returns the outcomes counted by this worker.
func (w *InMemoryWorker) Stats() Stats { return w.counts.snapshot() }
