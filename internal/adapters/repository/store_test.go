package repository_test

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pcbvalues/internal/adapters/repository"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.InitWriter(io.Discard)
	os.Exit(m.Run())
}

type storeFactory func(t *testing.T) repository.Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) repository.Store {
			return repository.NewMemoryStore(repository.WithAxisCount(3))
		},
		"sqlite": func(t *testing.T) repository.Store {
			s, err := repository.OpenSQL(context.Background(), repository.DriverSQLite,
				"file:"+filepath.Join(t.TempDir(), "scores.db"), repository.WithAxisCount(3))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStores(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			t.Run("FindMissing", func(t *testing.T) {
				_, err := newStore(t).Find(context.Background(), "nobody")
				assert.ErrorIs(t, err, repository.ErrNotFound)
			})
			t.Run("AddFind", func(t *testing.T) { testAddFind(t, newStore(t)) })
			t.Run("AddRejectsBadStats", func(t *testing.T) { testAddRejects(t, newStore(t)) })
			t.Run("OverwriteKeepsOrder", func(t *testing.T) { testOverwrite(t, newStore(t)) })
			t.Run("EditFlags", func(t *testing.T) { testEditFlags(t, newStore(t)) })
			t.Run("NormalizesNames", func(t *testing.T) { testNormalize(t, newStore(t)) })
		})
	}
}

func testAddFind(t *testing.T, s repository.Store) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "alice", []float64{100, 25.5, 0}))

	got, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.Score{Name: "alice", Flags: 0, Stats: []float64{100, 25.5, 0}}, got)
	assert.Equal(t, 1, s.Count(ctx))
}

func testAddRejects(t *testing.T, s repository.Store) {
	ctx := context.Background()
	for _, stats := range [][]float64{
		{50, 50},
		{50, 50, 50, 50},
		{50, 50, 101},
		{-1, 50, 50},
		{math.NaN(), 50, 50},
	} {
		assert.ErrorIs(t, s.Add(ctx, "bob", stats), repository.ErrInvalidStats, "stats %v", stats)
	}
	assert.ErrorIs(t, s.Add(ctx, "   ", []float64{1, 2, 3}), repository.ErrEmptyName)
	assert.Equal(t, 0, s.Count(ctx))
}

func testOverwrite(t *testing.T, s repository.Store) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "first", []float64{1, 1, 1}))
	require.NoError(t, s.Add(ctx, "second", []float64{2, 2, 2}))
	require.NoError(t, s.EditFlags(ctx, "first", model.FlagPopular))
	require.NoError(t, s.Add(ctx, "first", []float64{3, 3, 3}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, []float64{3, 3, 3}, list[0].Stats)
	assert.Equal(t, 0, list[0].Flags, "overwrite resets flags")
	assert.Equal(t, "second", list[1].Name)
}

func testEditFlags(t *testing.T, s repository.Store) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "carol", []float64{10, 20, 30}))

	require.NoError(t, s.EditFlags(ctx, "carol", 1))
	got, err := s.Find(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, got.Popular())

	require.NoError(t, s.EditFlags(ctx, "carol", math.MaxInt32))
	assert.ErrorIs(t, s.EditFlags(ctx, "carol", -1), repository.ErrInvalidFlags)
	assert.ErrorIs(t, s.EditFlags(ctx, "carol", math.MaxInt32+1), repository.ErrInvalidFlags)
	assert.ErrorIs(t, s.EditFlags(ctx, "dave", 1), repository.ErrNotFound)
}

func testNormalize(t *testing.T, s repository.Store) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "  Amélie ", []float64{33.3, 66.7, 50}))

	got, err := s.Find(ctx, "Amélie")
	require.NoError(t, err)
	assert.Equal(t, "Amélie", got.Name)
}

func TestSQLStoreRejectsUnknownDriver(t *testing.T) {
	_, err := repository.OpenSQL(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}

func TestSQLStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "scores.db")

	s, err := repository.OpenSQL(ctx, repository.DriverSQLite, dsn, repository.WithAxisCount(3))
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "erin", []float64{12.3, 45.6, 78.9}))
	require.NoError(t, s.Close())

	s, err = repository.OpenSQL(ctx, repository.DriverSQLite, dsn, repository.WithAxisCount(3))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Find(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.3, 45.6, 78.9}, got.Stats)

	s2, err := repository.OpenSQL(ctx, repository.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "other.db"), repository.WithAxisCount(3))
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()
	assert.Equal(t, 0, s2.Count(ctx))
}
