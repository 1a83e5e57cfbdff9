package roster

import "errors"

// Caller-facing error kinds. Wrapped with context; match with errors.Is.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventClosed       = errors.New("event is not open")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrAlreadyActive     = errors.New("already active on event")
	ErrNotRegistered     = errors.New("not registered")
	ErrInvalidState      = errors.New("invalid registration state")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
)
