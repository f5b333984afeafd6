// Package service wires the score store, replay detector, import queue and
// ranking into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pcbvalues/internal/adapters/mq/queue"
	"github.com/okian/pcbvalues/internal/adapters/mq/worker"
	"github.com/okian/pcbvalues/internal/adapters/repository"
	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/dedupe"
	"github.com/okian/pcbvalues/internal/domain/digest"
	"github.com/okian/pcbvalues/internal/domain/match"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/domain/results"
	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/okian/pcbvalues/pkg/metrics"
)

const (
	defaultAxisCount   = 7
	defaultWorkerCount = 4
	defaultQueueSize   = 10_000
	defaultDedupeSize  = 50_000
)

// Service implements the API dependencies for the score gallery.
type Service struct {
	mu sync.RWMutex

	// writeMu serializes the find-then-add sequence of submissions and
	// imports so two writers never race on the same name.
	writeMu sync.Mutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	axes        int
	weights     []float64
	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	logger  logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		axes:        defaultAxisCount,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start validates the configuration and starts the import workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.weights != nil {
		if err := match.ValidateWeights(s.weights, s.axes); err != nil {
			return fmt.Errorf("start service: %w", err)
		}
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)
	// Accepted imports outlive the caller's context; Stop is the only exit.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "score service started",
		logger.Int("axes", s.axes),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the import queue and waits for queued jobs to be applied.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "import workers did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "score service stopped", logger.Any("imports", s.pool.Stats()))
}

// AxisCount returns the accepted score vector length.
func (s *Service) AxisCount() int { return s.axes }

// Find returns the record stored under name.
func (s *Service) Find(ctx context.Context, name string) (model.Score, error) {
	return s.store.Find(ctx, name)
}

// List returns every record in insertion order.
func (s *Service) List(ctx context.Context) ([]model.Score, error) {
	return s.store.List(ctx)
}

// EditFlags replaces the flag bitfield of name.
func (s *Service) EditFlags(ctx context.Context, name string, flags int64) error {
	if err := s.store.EditFlags(ctx, name, flags); err != nil {
		return fmt.Errorf("edit flags of %q: %w", name, err)
	}
	s.logger.Info(ctx, "flags edited", logger.String("name", name), logger.Int64("flags", flags))
	return nil
}

// Submit validates p and stores it. A replay of the stored result reports
// duplicate without writing. A taken name without override returns
// *model.NameTakenError.
func (s *Service) Submit(ctx context.Context, p model.Submission, override bool) (bool, error) {
	name, err := s.validate(p)
	if err != nil {
		metrics.RecordSubmission(metrics.SubmissionRejected)
		s.logger.Debug(ctx, "submission rejected", logger.String("name", p.Name), logger.Error(err))
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, found, err := s.lookup(ctx, name)
	if err != nil {
		metrics.RecordSubmission(metrics.SubmissionFailed)
		return false, err
	}

	key := dedupe.Key(name, p.Digest)
	if found && codec.Format(existing.Stats) == codec.Format(p.Vals) {
		s.deduper.SeenAndRecord(ctx, key)
		metrics.RecordSubmission(metrics.SubmissionDuplicate)
		s.logger.Debug(ctx, "replayed submission", logger.String("name", name))
		return true, nil
	}
	if found && !override {
		metrics.RecordSubmission(metrics.SubmissionConfirm)
		return false, &model.NameTakenError{Existing: existing}
	}

	if err := s.store.Add(ctx, name, p.Vals); err != nil {
		metrics.RecordSubmission(metrics.SubmissionFailed)
		metrics.RecordErrorByComponent("service", "store_error")
		s.logger.Error(ctx, "failed to store submission", logger.String("name", name), logger.Error(err))
		return false, fmt.Errorf("store %q: %w", name, err)
	}
	s.deduper.SeenAndRecord(ctx, key)
	if found {
		metrics.RecordOverride()
	}
	metrics.RecordSubmission(metrics.SubmissionAccepted)
	s.logger.Info(ctx, "submission stored",
		logger.String("name", name),
		logger.Bool("override", found),
		logger.Int("takes", p.Takes),
		logger.String("version", p.Version),
	)
	return false, nil
}

// Import applies an exported payload without overwriting. It reports false
// when the name already has a record.
func (s *Service) Import(ctx context.Context, p model.Submission) (bool, error) {
	name, err := s.validate(p)
	if err != nil {
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, found, err := s.lookup(ctx, name)
	if err != nil || found {
		return false, err
	}
	if err := s.store.Add(ctx, name, p.Vals); err != nil {
		return false, fmt.Errorf("store %q: %w", name, err)
	}
	return true, nil
}

// EnqueueImport validates p and queues it for the import workers. A payload
// whose name and digest were already stored or queued is refused with
// ErrAlreadyImported.
func (s *Service) EnqueueImport(ctx context.Context, batch string, p model.Submission) error {
	name, err := s.validate(p)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}

	key := dedupe.Key(name, p.Digest)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordWorkerDuplicate()
		return ErrAlreadyImported
	}
	if err := s.queue.Enqueue(ctx, queue.Job{Batch: batch, Payload: p}); err != nil {
		s.deduper.Unrecord(ctx, key)
		return err
	}
	return nil
}

// Match ranks the stored population against target with the configured
// weights, closest first.
func (s *Service) Match(ctx context.Context, target []float64) ([]model.Match, error) {
	start := time.Now()
	population, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list population: %w", err)
	}
	ranked, err := match.Rank(target, population, s.weights)
	if err != nil {
		return nil, fmt.Errorf("rank population: %w", err)
	}
	metrics.RecordRankLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateRankPopulation(len(population))
	return ranked, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	records := s.store.Count(ctx)
	stats := map[string]any{
		"started":     s.started,
		"axisCount":   s.axes,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dedupeKeys":  s.deduper.Size(),
		"records":     records,
	}
	metrics.UpdateStoreRecords(records)

	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["imports"] = s.pool.Stats()
		metrics.UpdateQueueSize(s.queue.Len(), s.queue.Cap())
	}
	return stats
}

// validate checks p and returns its normalized name. Every failure wraps
// model.ErrInvalidSubmission.
func (s *Service) validate(p model.Submission) (string, error) {
	name := model.NormalizeName(p.Name)
	if name == "" {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidSubmission, model.ErrEmptyName)
	}
	if len(p.Vals) != s.axes {
		return "", fmt.Errorf("%w: %w: got %d, want %d", model.ErrInvalidSubmission, codec.ErrLengthMismatch, len(p.Vals), s.axes)
	}
	if err := codec.CheckRange(p.Vals); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidSubmission, err)
	}
	if !digest.Verify(codec.Format(p.Vals), p.Digest) {
		metrics.RecordDigestMismatch()
		return "", fmt.Errorf("%w: %w", model.ErrInvalidSubmission, results.ErrDigestMismatch)
	}
	return name, nil
}

func (s *Service) lookup(ctx context.Context, name string) (model.Score, bool, error) {
	existing, err := s.store.Find(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Score{}, false, nil
	case err != nil:
		return model.Score{}, false, fmt.Errorf("find %q: %w", name, err)
	}
	return existing, true, nil
}
