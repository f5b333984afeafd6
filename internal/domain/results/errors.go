package results

import "errors"

// Sentinel kinds for result parameter handling.
var (
	ErrMalformedQuery = errors.New("malformed result query")
	ErrMissingDigest  = errors.New("missing digest")
	ErrDigestMismatch = errors.New("digest does not match score")
)
