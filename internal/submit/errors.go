package submit

import (
	"errors"
	"fmt"

	"github.com/okian/pcbvalues/internal/domain/model"
)

var (
	// ErrNetworkTimeout is returned when the store does not answer in time.
	ErrNetworkTimeout = errors.New("submission timed out")

	// ErrNetworkFailure covers transport errors and non-success responses.
	ErrNetworkFailure = errors.New("submission failed")

	// ErrDuplicateName means the name is taken and an overwrite needs consent.
	ErrDuplicateName = errors.New("name already exists")

	// ErrNameRequired is returned when no usable name was provided.
	ErrNameRequired = errors.New("name required")
)

// ConflictError carries the server message and the stored record for a
// name collision. It matches ErrDuplicateName.
type ConflictError struct {
	Message  string
	Existing *model.Score
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return ErrDuplicateName.Error()
	}
	return fmt.Sprintf("%s: %s", ErrDuplicateName, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicateName }
