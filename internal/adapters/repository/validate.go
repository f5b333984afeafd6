package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/metrics"
)

func checkName(name string) (string, error) {
	n := model.NormalizeName(name)
	if n == "" {
		return "", ErrEmptyName
	}
	return n, nil
}

func checkStats(stats []float64, axes int) error {
	if len(stats) != axes {
		return fmt.Errorf("%w: got %d values, want %d", ErrInvalidStats, len(stats), axes)
	}
	if err := codec.CheckRange(stats); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStats, err)
	}
	return nil
}

func checkFlags(flags int64) error {
	if err := model.ValidateFlags(flags); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	return nil
}

// observe records the latency of a store operation.
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// roundStats applies the one-decimal precision the codec persists, so both
// stores return identical vectors for identical input.
func roundStats(stats []float64) []float64 {
	out := make([]float64, len(stats))
	for i, v := range stats {
		out[i], _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	}
	return out
}
