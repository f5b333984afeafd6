package dataset

import "errors"

// ErrInvalidDataset is returned when raw definitions fail schema or
// cross-reference validation.
var ErrInvalidDataset = errors.New("invalid dataset")
