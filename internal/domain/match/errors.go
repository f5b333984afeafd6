package match

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidWeights = errors.New("invalid weights")
	ErrArity          = errors.New("score vector length mismatch")
)
