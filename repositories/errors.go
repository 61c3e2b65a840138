package repositories

import "errors"

var (
	ErrNotFound          = errors.New("course not found")
	ErrAlreadyRegistered = errors.New("student already registered")
)

var ErrSearchUnavailable = errors.New("search index not configured")
