package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Score record flags.
const (
	FlagPopular = 1 << 0
)

// MaxFlags is the largest flag value accepted by the store.
const MaxFlags = math.MaxInt32

// Score is a persisted gallery entry.
type Score struct {
	Name  string    `json:"name"`
	Flags int       `json:"flags"`
	Stats []float64 `json:"stats"`
}

// Popular reports whether the record carries the popular flag.
func (s Score) Popular() bool { return s.Flags&FlagPopular != 0 }

// Match is a Score augmented with its distance to a target vector.
// Lower bias is closer; 0 means identical.
type Match struct {
	Score
	Bias float64 `json:"bias"`
}

// Submission is the payload a client sends to persist a result.
type Submission struct {
	Name    string    `json:"name"`
	Vals    []float64 `json:"vals"`
	Time    *string   `json:"time"`
	Edition Edition   `json:"edition"`
	Digest  string    `json:"digest"`
	Takes   int       `json:"takes"`
	Version string    `json:"version"`
}

// NormalizeName trims surrounding space and applies Unicode NFC so that
// visually identical names map to the same store key.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseFlags parses a flag bitfield, rejecting non-integers, negatives and
// values above MaxFlags.
func ParseFlags(raw string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidFlags, raw)
	}
	if err := ValidateFlags(n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// ValidateFlags checks that flags fit the store's non-negative 32-bit range.
func ValidateFlags(flags int64) error {
	if flags < 0 || flags > MaxFlags {
		return fmt.Errorf("%w: %d out of range", ErrInvalidFlags, flags)
	}
	return nil
}

// ActionConfirm is the submit response action asking the client to confirm
// an overwrite and resend with override set.
const ActionConfirm = "confirm"

// SubmitResponse is the server reply to a submission.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Action    string `json:"action,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Existing  *Score `json:"existing,omitempty"`
}
