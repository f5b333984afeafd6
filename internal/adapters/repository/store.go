// Package repository persists gallery score records.
package repository

import (
	"context"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// Store provides read/write access to score records. Names are normalized
// with model.NormalizeName before any lookup or write.
type Store interface {
	// Find returns the record for name or ErrNotFound.
	Find(ctx context.Context, name string) (model.Score, error)

	// Add creates or replaces the record for name. Replacing resets flags.
	// Returns ErrInvalidStats when stats has the wrong arity or range.
	Add(ctx context.Context, name string, stats []float64) error

	// List returns every record in insertion order.
	List(ctx context.Context) ([]model.Score, error)

	// EditFlags sets the flag bitfield of an existing record.
	// Returns ErrInvalidFlags or ErrNotFound.
	EditFlags(ctx context.Context, name string, flags int64) error

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
