package errors

import "errors"

// Domain errors
var (
	// Configuration errors
	ErrMissingRequired = errors.New("missing required field")
	ErrInvalidConfig   = errors.New("invalid configuration")

	// Workbook errors
	ErrPageNotFound      = errors.New("page not found")
	ErrPageAlreadyExists = errors.New("page already exists")
	ErrColumnNotFound    = errors.New("column not found")
	ErrInvalidCell       = errors.New("invalid cell coordinates")

	// Sink errors
	ErrSinkWrite = errors.New("result write failed")

	// Repository errors
	ErrRepositoryOperation   = errors.New("repository operation failed")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
