package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNoStore         = errors.New("no score store configured")
	ErrAlreadyImported = errors.New("payload already imported")
)
