package domain

import "errors"

// Caller-visible error kinds. Anything else crossing the service boundary is an
// internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrProjectNotFound    = errors.New("project not found")
	ErrPreconditionFailed = errors.New("precondition failed")
)
