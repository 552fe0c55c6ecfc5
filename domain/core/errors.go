package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Selection errors
	ErrInvalidSelection    = errors.New("selection cannot change while a job is running")
	ErrIncompleteSelection = errors.New("both a method and a dataset must be selected")
	ErrUnknownDataset      = errors.New("dataset not found in catalog")
	ErrSessionRunning      = fmt.Errorf("%w: an analysis is already running", ErrInvalidSelection)

	// Parameter errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// Settlement outcomes
	ErrUserCancelled = errors.New("analysis cancelled by user")
)

// NewInvalidParameterError reports a parameter that does not match its schema entry
func NewInvalidParameterError(name string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidParameter, name, reason)
}

// IsSelectionError reports whether err comes from selection state checks
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrIncompleteSelection)
}

// IsCancelled reports whether err marks a user cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, ErrUserCancelled)
}
