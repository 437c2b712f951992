package core

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable means the process has no embedded database driver.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrOpen means the database could not be opened or migrated.
	ErrOpen = errors.New("open database")
	// ErrNotReady means a store operation ran before a successful open or after close.
	ErrNotReady = errors.New("store not ready")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrStorageWrite means the engine failed while writing.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStorageRead means the engine failed while reading.
	ErrStorageRead = errors.New("storage read failed")
	// ErrRateFetch is raised inside the rate fetcher and never leaves it.
	ErrRateFetch = errors.New("rate fetch failed")
	// ErrMissingRate means a conversion needed a rate the table does not have.
	ErrMissingRate = errors.New("missing exchange rate")
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any field.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationField returns the field named by a validation error in err's chain.
func ValidationField(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, true
	}
	return "", false
}
