package repository

import "errors"

var (
	// ErrResultNotFound indicates the analysis result was not found
	ErrResultNotFound = errors.New("analysis result not found")

	// ErrInvalidResult indicates a nil result was saved
	ErrInvalidResult = errors.New("invalid analysis result")
)
