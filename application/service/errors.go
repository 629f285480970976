package service

import "errors"

// Service errors. Callers map them to client or server failures.
var (
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the request conflicts with stored state.
	ErrConflict = errors.New("conflict")

	// ErrIncompleteIntake indicates the work item was stored but one or more
	// attachments were not.
	ErrIncompleteIntake = errors.New("intake incomplete")
)
