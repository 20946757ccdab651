package domain

import "errors"

// Error taxonomy shared by the clients, the controllers and the edge
// handlers. Anything not matching one of these is treated as a
// transient failure.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("invalid input")
	ErrDuplicate       = errors.New("duplicate review")
	ErrDisallowed      = errors.New("content not allowed")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)
