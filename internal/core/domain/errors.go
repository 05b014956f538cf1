package domain

import "errors"

var (
	// ErrInvalidInput marks malformed request payloads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal marks unexpected persistence or hashing failures. The
	// underlying cause stays in the chain for logging but is never rendered.
	ErrInternal = errors.New("internal error")
)
