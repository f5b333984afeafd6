// Package worker applies queued import jobs to the score store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pcbvalues/internal/adapters/mq/queue"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/okian/pcbvalues/pkg/metrics"
)

const (
	defaultWorkerCount    = 4
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Importer applies one exported submission. It reports false without an
// error when the payload was skipped, e.g. because the name is taken.
type Importer interface {
	Import(ctx context.Context, p model.Submission) (bool, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Stats are cumulative job outcomes.
type Stats struct {
	Applied int64 `json:"applied"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

type counters struct {
	applied atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{Applied: c.applied.Load(), Skipped: c.skipped.Load(), Failed: c.failed.Load()}
}

// InMemoryWorker drains the queue until it is closed or ctx ends.
type InMemoryWorker struct {
	queue    Queue
	importer Importer
	name     string
	counts   *counters

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, importer Importer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		importer: importer,
		name:     "worker",
		counts:   &counters{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue channel closes or ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "import failed",
					logger.String("batch", j.Batch),
					logger.String("name", j.Payload.Name),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // jobs are values on the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	applied, err := w.importer.Import(ctx, j.Payload)
	switch {
	case err != nil:
		w.counts.failed.Add(1)
		metrics.RecordImport(metrics.ImportFailed)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "import_error")
		return fmt.Errorf("import %q: %w", j.Payload.Name, err)
	case applied:
		w.counts.applied.Add(1)
		metrics.RecordImport(metrics.ImportApplied)
	default:
		w.counts.skipped.Add(1)
		metrics.RecordImport(metrics.ImportSkipped)
		metrics.RecordWorkerDuplicate()
		w.logger.Debug(ctx, "import skipped", logger.String("batch", j.Batch), logger.String("name", j.Payload.Name))
	}
	return nil
}

// Pool manages multiple workers sharing one queue and one set of counters.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	counts  *counters

	stopOnce sync.Once
	shutdown chan struct{}

	lastApplied int64
	lastTick    time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, importer Importer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counts:   &counters{},
		shutdown: make(chan struct{}),
		lastTick: time.Now(),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, importer,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(pool.counts),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerJobsPerSecond(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Stats returns cumulative outcomes across all workers.
func (p *Pool) Stats() Stats { return p.counts.snapshot() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			applied := p.counts.applied.Load()
			if secs := now.Sub(p.lastTick).Seconds(); secs > 0 {
				metrics.UpdateWorkerJobsPerSecond(float64(applied-p.lastApplied) / secs)
			}
			p.lastApplied, p.lastTick = applied, now
		}
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.stopOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
