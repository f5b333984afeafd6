// Package loadgen drives a running score store with generated results and
// checks that every stored score is found again by the match endpoint.
package loadgen

import (
	"errors"
	"time"
)

// Default run parameters.
const (
	DefaultCount   = 1000
	DefaultWorkers = 8
	DefaultTimeout = 30 * time.Second
	DefaultAxes    = 7
)

var (
	// ErrInvalidConfig is returned by Run for unusable parameters.
	ErrInvalidConfig = errors.New("invalid load config")
	// ErrVerification is returned when stored scores are not matched back.
	ErrVerification = errors.New("match verification failed")
)

// Config holds the parameters of one load run.
type Config struct {
	BaseURL string        // service root, e.g. http://localhost:9080
	Count   int           // results to generate and submit
	Replays int           // submissions sent twice to exercise replay detection
	Verify  int           // submissions looked up through /api/match; 0 checks all
	Workers int           // concurrent requests
	Timeout time.Duration // per-request timeout
	Axes    int           // score vector length
	Seed    uint64        // generator seed; 0 picks one from the clock
	Output  string        // file the payloads are written to; empty skips it
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is empty"))
	case c.Count <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("count must be positive"))
	case c.Replays < 0 || c.Replays > c.Count:
		return errors.Join(ErrInvalidConfig, errors.New("replays must be within [0, count]"))
	case c.Verify < 0:
		return errors.Join(ErrInvalidConfig, errors.New("verify must not be negative"))
	case c.Workers <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.Axes <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("axes must be positive"))
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// Stats summarizes a run.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicates int
	Conflicts  int
	Failed     int
	Verified   int
	Mismatched int
	Duration   time.Duration
}
