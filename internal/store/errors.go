package store

import "errors"

// Sentinel errors shared by all store backends and the services above them.
// Handlers map them onto HTTP status codes; everything else is internal.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
)
