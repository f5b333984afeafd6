package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/logger"
)

// Run generates cfg.Count results, submits them concurrently, replays the
// first cfg.Replays and checks that each verified score is its own closest
// match. It returns ErrVerification when any check fails.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Named("loadgen")
	start := time.Now()
	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(start.UnixNano())
	}
	payloads, err := Generate(rand.New(rand.NewPCG(seed, seed>>1)), cfg.Count, cfg.Axes) //nolint:gosec // test data
	if err != nil {
		return nil, fmt.Errorf("generate payloads: %w", err)
	}
	stats := &Stats{Generated: len(payloads)}
	log.Info(ctx, "generated payloads", logger.Int("count", len(payloads)), logger.Int64("seed", int64(seed)))

	batch := append(append([]model.Submission(nil), payloads...), payloads[:cfg.Replays]...)
	submitAll(ctx, c, cfg.Workers, batch, stats)
	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed),
	)

	sample := payloads
	if cfg.Verify > 0 && cfg.Verify < len(sample) {
		sample = sample[:cfg.Verify]
	}
	verifyAll(ctx, c, cfg.Workers, sample, stats)

	if cfg.Output != "" {
		if err := save(cfg.Output, payloads); err != nil {
			log.Warn(ctx, "failed to save payloads", logger.Error(err))
		} else {
			log.Info(ctx, "payloads saved", logger.String("file", cfg.Output))
		}
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "final statistics",
		logger.String("submitted", humanize.Comma(int64(stats.Submitted))),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", float64(stats.Submitted+stats.Verified)/stats.Duration.Seconds()),
	)

	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d scores", ErrVerification, stats.Mismatched, len(sample))
	}
	return stats, nil
}

// fanOut runs fn for every index in [0, n) on workers goroutines.
func fanOut(ctx context.Context, workers, n int, fn func(i int)) {
	indices := make(chan int, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}
	go func() {
		defer close(indices)
		for i := range n {
			select {
			case <-ctx.Done():
				return
			case indices <- i:
			}
		}
	}()
	wg.Wait()
}

func submitAll(ctx context.Context, c *client, workers int, batch []model.Submission, stats *Stats) {
	var accepted, duplicates, conflicts, failed atomic.Int64
	// Replays must land after their originals.
	first, replays := batch, []model.Submission(nil)
	if n := stats.Generated; n < len(batch) {
		first, replays = batch[:n], batch[n:]
	}
	for _, part := range [][]model.Submission{first, replays} {
		fanOut(ctx, workers, len(part), func(i int) {
			res, err := c.submit(ctx, part[i])
			switch res {
			case outcomeAccepted:
				accepted.Add(1)
			case outcomeDuplicate:
				duplicates.Add(1)
			case outcomeConflict:
				conflicts.Add(1)
			default:
				failed.Add(1)
				logger.Get().Debug(ctx, "submission failed", logger.String("name", part[i].Name), logger.Error(err))
			}
		})
	}
	stats.Accepted = int(accepted.Load())
	stats.Duplicates = int(duplicates.Load())
	stats.Conflicts = int(conflicts.Load())
	stats.Failed = int(failed.Load())
	stats.Submitted = stats.Accepted + stats.Duplicates + stats.Conflicts + stats.Failed
}

// verifyAll expects every sampled score to be matched with zero bias.
// Another record with the same vector is an equally valid answer.
func verifyAll(ctx context.Context, c *client, workers int, sample []model.Submission, stats *Stats) {
	var verified, mismatched atomic.Int64
	fanOut(ctx, workers, len(sample), func(i int) {
		best, err := c.closest(ctx, sample[i].Vals)
		if err != nil || best.Bias != 0 {
			mismatched.Add(1)
			logger.Get().Warn(ctx, "score not matched back",
				logger.String("name", sample[i].Name),
				logger.String("closest", best.Name),
				logger.Float64("bias", best.Bias),
				logger.Error(err),
			)
			return
		}
		verified.Add(1)
	})
	stats.Verified = int(verified.Load())
	stats.Mismatched = int(mismatched.Load())
}

// save writes payloads as one JSON array, the body POST /api/import accepts.
func save(path string, payloads []model.Submission) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payloads: %w", err)
	}
	return os.WriteFile(path, b, 0o600)
}
