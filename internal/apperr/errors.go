// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrInvalidBody   = errors.New("invalid body")
	ErrMissingFields = errors.New("missing fields")
	ErrPersistence   = errors.New("persistence error")
	ErrNotFound      = errors.New("not found")
	ErrNotification  = errors.New("notification failure")
)
