package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/okian/pcbvalues/pkg/metrics"
)

// SQLStore keeps records in a scores table. Stats are stored as the
// comma-joined one-decimal score string so the table does not depend on the
// axis count.
type SQLStore struct {
	db     *sql.DB
	driver string
	cfg    settings
}

// OpenSQL opens dsn with driver, creates the schema and returns the store.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps in-memory databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s, err := NewSQLStore(ctx, db, driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and ensures the schema exists.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string, opts ...Option) (*SQLStore, error) {
	if err := CreateSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, driver: driver, cfg: newSettings(opts)}
	metrics.UpdateStoreRecords(s.Count(ctx))
	return s, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Find implements Store.
func (s *SQLStore) Find(ctx context.Context, name string) (model.Score, error) {
	defer observe("find", time.Now())
	n, err := checkName(name)
	if err != nil {
		return model.Score{}, err
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT name, flags, stats FROM scores WHERE name = ?`), n)
	rec, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Score{}, ErrNotFound
	}
	if err != nil {
		return model.Score{}, err
	}
	return rec, nil
}

// Add implements Store. Existing rows keep their id, so list order is stable.
func (s *SQLStore) Add(ctx context.Context, name string, stats []float64) error {
	defer observe("add", time.Now())
	n, err := checkName(name)
	if err != nil {
		return err
	}
	if err := checkStats(stats, s.cfg.axes); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO scores (name, flags, stats) VALUES (?, 0, ?)
		ON CONFLICT (name) DO UPDATE SET flags = 0, stats = excluded.stats`),
		n, codec.Format(stats))
	if err != nil {
		s.cfg.log.Error(ctx, "failed to upsert score", logger.String("name", n), logger.Error(err))
		return fmt.Errorf("add %q: %w", n, err)
	}
	metrics.UpdateStoreRecords(s.Count(ctx))
	return nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]model.Score, error) {
	defer observe("list", time.Now())
	rows, err := s.db.QueryContext(ctx, `SELECT name, flags, stats FROM scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Score
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return out, nil
}

// EditFlags implements Store.
func (s *SQLStore) EditFlags(ctx context.Context, name string, flags int64) error {
	defer observe("edit_flags", time.Now())
	if err := checkFlags(flags); err != nil {
		return err
	}
	n, err := checkName(name)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE scores SET flags = ? WHERE name = ?`), flags, n)
	if err != nil {
		return fmt.Errorf("edit flags %q: %w", n, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("edit flags %q: %w", n, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store. Backend errors are logged and reported as 0.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		s.cfg.log.Warn(ctx, "failed to count scores", logger.Error(err))
		return 0
	}
	return n
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scan(row scanner) (model.Score, error) {
	var (
		rec   model.Score
		stats string
	)
	if err := row.Scan(&rec.Name, &rec.Flags, &stats); err != nil {
		return model.Score{}, err
	}
	vals, err := codec.Decode(stats, s.cfg.axes)
	if err != nil {
		return model.Score{}, fmt.Errorf("%w: record %q: %v", ErrInvalidStats, rec.Name, err)
	}
	rec.Stats = vals
	return rec, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
