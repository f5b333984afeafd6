// Package codec converts score vectors to and from the URL-embeddable
// score string: one-decimal percentages joined with "," and percent-encoded.
package codec

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const separator = ","

// Format renders each value with exactly one decimal place and joins them
// with commas. The result is the exact input of the digest.
func Format(vector []float64) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, separator)
}

// Encode returns the percent-encoded form of Format(vector).
func Encode(vector []float64) string {
	return url.QueryEscape(Format(vector))
}

// Decode parses a percent-encoded score string into a vector of exactly
// expected values, each within [0, 100]. Violations are hard failures;
// values are never clamped.
func Decode(raw string, expected int) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingInput
	}
	// PathUnescape leaves '+' alone, matching decodeURIComponent.
	plain, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	tokens := strings.Split(plain, separator)
	vector := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: token %d %q is not a number", ErrParse, i, tok)
		}
		vector[i] = v
	}

	if len(vector) != expected {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrLengthMismatch, len(vector), expected)
	}
	if err := CheckRange(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// CheckRange fails with ErrRange if any value is outside [0, 100] or not finite.
func CheckRange(vector []float64) error {
	for i, v := range vector {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("%w: value %d is %v", ErrRange, i, v)
		}
	}
	return nil
}
