// Package config defines process configuration and its loading hooks.
//
// The Config value is threaded explicitly into constructors; nothing in the
// service reads axis count, endpoint or version from globals.
package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration shared by the server and the client.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AxisCount is the fixed length of every score vector.
	AxisCount int `koanf:"axis_count"`

	// Version is sent with every submission.
	Version string `koanf:"version"`

	// APIEndpoint is the submission URL used by the client.
	APIEndpoint string `koanf:"api_endpoint"`

	// SubmitTimeout aborts a submission that takes longer.
	SubmitTimeout time.Duration `koanf:"submit_timeout"`

	// DatabaseDriver selects the store backend: sqlite or postgres.
	DatabaseDriver string `koanf:"database_driver"`

	// DatabaseURL is the driver-specific data source name.
	DatabaseURL string `koanf:"database_url"`

	// DatasetDir holds raw questions/values files; empty uses the embedded set.
	DatasetDir string `koanf:"dataset_dir"`

	// MatchWeights are per-axis ranking multipliers; empty means all 1.
	MatchWeights []float64 `koanf:"match_weights"`

	// MatchLimit is the number of matches shown by default.
	MatchLimit int `koanf:"match_limit"`

	// DedupeSize bounds the replay detector.
	DedupeSize int `koanf:"dedupe_size"`

	// QueueSize bounds the import queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of import workers.
	WorkerCount int `koanf:"worker_count"`

	// SessionFile stores client-side session state.
	SessionFile string `koanf:"session_file"`

	// ExportDir receives manual export files when a submission fails.
	ExportDir string `koanf:"export_dir"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		AxisCount:      7,
		Version:        "1.0.0",
		APIEndpoint:    "http://localhost:9080/api/scores",
		SubmitTimeout:  10 * time.Second,
		DatabaseDriver: DriverSQLite,
		DatabaseURL:    "file:pcbvalues.db",
		MatchLimit:     5,
		DedupeSize:     50_000,
		QueueSize:      10_000,
		WorkerCount:    4,
		SessionFile:    defaultSessionFile(),
		ExportDir:      ".",
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".pcbvalues", "session.json")
	}
	return filepath.Join(home, ".pcbvalues", "session.json")
}

// Weights returns the configured ranking weights, or nil for unit weights.
func (c *Config) Weights() []float64 {
	if len(c.MatchWeights) == 0 {
		return nil
	}
	return append([]float64(nil), c.MatchWeights...)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.AxisCount <= 0:
		return fmt.Errorf("%w: axis_count must be positive", ErrInvalidConfig)
	case c.SubmitTimeout <= 0:
		return fmt.Errorf("%w: submit_timeout must be positive", ErrInvalidConfig)
	case c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres:
		return fmt.Errorf("%w: unknown database_driver %q", ErrInvalidConfig, c.DatabaseDriver)
	case c.MatchLimit < 0:
		return fmt.Errorf("%w: match_limit must not be negative", ErrInvalidConfig)
	}
	if len(c.MatchWeights) == 0 {
		return nil
	}
	if len(c.MatchWeights) != c.AxisCount {
		return fmt.Errorf("%w: match_weights has %d entries for %d axes", ErrInvalidConfig, len(c.MatchWeights), c.AxisCount)
	}
	var sum float64
	for _, w := range c.MatchWeights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: match_weights must be finite and non-negative", ErrInvalidConfig)
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("%w: match_weights must not all be zero", ErrInvalidConfig)
	}
	return nil
}
