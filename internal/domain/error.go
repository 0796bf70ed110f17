package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrReadDatabaseRow  = errors.New("failed to read database row")
	ErrAIUnavailable    = errors.New("ai service unavailable")
	ErrInvalidBooking   = errors.New("booking request is not in the expected format")
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrUnsupportedMedia = errors.New("unsupported media content type")
)
