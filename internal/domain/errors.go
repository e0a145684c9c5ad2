package domain

import (
	"errors"
	"fmt"
)

var (
	// Local store errors
	ErrPlayerNotFound = errors.New("player not found")

	// Upstream API errors
	ErrUpstreamNotFound    = errors.New("player not found upstream")
	ErrUpstreamForbidden   = errors.New("upstream access denied")
	ErrUpstreamUnavailable = errors.New("upstream temporarily unavailable")

	// ErrNotInLegendLeague marks a player that no longer meets the tracking
	// requirement. It is a skip condition, not a failure.
	ErrNotInLegendLeague = errors.New("player is not in legend league")
)

// StorageError wraps a durable-store failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err, passing nil through.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
