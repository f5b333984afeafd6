package worker_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/pcbvalues/internal/adapters/mq/queue"
	"github.com/okian/pcbvalues/internal/adapters/mq/worker"
	"github.com/okian/pcbvalues/internal/domain/model"
	logging "github.com/okian/pcbvalues/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logging.InitWriter(io.Discard)
	os.Exit(m.Run())
}

// mockImporter applies every name once and skips repeats.
type mockImporter struct {
	mu      sync.Mutex
	applied map[string]bool
	fail    map[string]error
}

func newMockImporter() *mockImporter {
	return &mockImporter{applied: map[string]bool{}, fail: map[string]error{}}
}

func (m *mockImporter) Import(_ context.Context, p model.Submission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[p.Name]; ok {
		return false, err
	}
	if m.applied[p.Name] {
		return false, nil
	}
	m.applied[p.Name] = true
	return true, nil
}

func (m *mockImporter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applied)
}

func enqueue(q *queue.InMemoryQueue, names ...string) {
	for _, n := range names {
		_ = q.Enqueue(context.Background(), queue.Job{Batch: "b", Payload: model.Submission{Name: n}})
	}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		imp := newMockImporter()
		imp.fail["broken"] = errors.New("store down")
		w := worker.NewInMemoryWorker(q, imp, worker.WithName("test-worker"))

		convey.Convey("When jobs are queued and the queue is closed", func() {
			enqueue(q, "alice", "bob", "alice", "broken")
			_ = q.Close()
			w.Run(context.Background())

			convey.Convey("Then every outcome is counted", func() {
				convey.So(w.Stats(), convey.ShouldResemble, worker.Stats{Applied: 2, Skipped: 1, Failed: 1})
				convey.So(imp.count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		imp := newMockImporter()
		pool := worker.NewPool(3, q, imp)
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When jobs are processed and the pool shuts down", func() {
			pool.Start(context.Background())
			names := make([]string, 0, 50)
			for i := 0; i < 50; i++ {
				names = append(names, string(rune('A'+i%26))+string(rune('a'+i/26)))
			}
			enqueue(q, names...)
			enqueue(q, names[:5]...)

			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is drained before shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Stats(), convey.ShouldResemble, worker.Stats{Applied: 50, Skipped: 5})
				convey.So(imp.count(), convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the pool size is invalid", func() {
			p := worker.NewPool(0, q, imp)
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
