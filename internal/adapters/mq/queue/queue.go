// Package queue buffers import jobs between the HTTP layer and the workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/metrics"
)

const defaultCapacity = 10_000

// Job is one exported submission waiting to be applied.
type Job struct {
	Batch   string
	Payload model.Submission
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns ErrFull or ErrClosed when the job was
	// not accepted.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel workers read from. It is closed after Close
	// once the buffer drains.
	Dequeue() <-chan Job

	// Len returns the number of buffered jobs.
	Len() int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops accepting jobs.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // Job is copied into the channel anyway
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs), q.capacity)
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan Job { return q.jobs }

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	n := len(q.jobs)
	metrics.UpdateQueueSize(n, q.capacity)
	return n
}

// Cap implements Queue.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close implements Queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}
