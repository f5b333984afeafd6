package codec

import "errors"

// Sentinel kinds for score string decoding.
var (
	ErrMissingInput   = errors.New("no scores provided")
	ErrParse          = errors.New("invalid score value")
	ErrLengthMismatch = errors.New("wrong number of scores")
	ErrRange          = errors.New("score out of range")
)
