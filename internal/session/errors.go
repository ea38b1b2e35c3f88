package session

import (
	"errors"
	"fmt"
)

// ErrLoadFailed is returned, wrapped, when a session file cannot be read or
// parsed. Load still returns a usable empty state alongside it.
var ErrLoadFailed = errors.New("failed to load session")

// ErrInvalidLegendBox is returned when a legend box file is corrupt or
// describes an empty region.
var ErrInvalidLegendBox = errors.New("invalid legend box")

// PersistenceError describes a failed file operation.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
