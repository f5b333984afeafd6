package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for model validation.
var (
	ErrInvalidFlags      = errors.New("invalid flags")
	ErrEmptyName         = errors.New("name must not be empty")
	ErrInvalidSubmission = errors.New("invalid submission")
)

// NameTakenError reports a submission whose name already has a record and
// which did not ask for an overwrite.
type NameTakenError struct {
	Existing Score
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("User %s already exists in the database, do you want to override the last score?", e.Existing.Name)
}
