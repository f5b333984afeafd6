package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidStats = errors.New("invalid score stats")
	ErrInvalidFlags = errors.New("invalid flags")
	ErrEmptyName    = errors.New("empty name")
)
