package repository

import "errors"

// Common repository errors
var (
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
	ErrInvalidInput       = errors.New("invalid input")
)
