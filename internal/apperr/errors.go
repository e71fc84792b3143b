package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownCommand = errors.New("unknown command")
	ErrClosed         = errors.New("closed")
	ErrInvalidName    = errors.New("invalid name")
)
