package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrRunInProgress = errors.New("run already in progress")

	// ErrEventNotFound is returned when the parent application exists but the
	// timeline event does not. It matches ErrNotFound.
	ErrEventNotFound = fmt.Errorf("timeline entry %w", ErrNotFound)
)
