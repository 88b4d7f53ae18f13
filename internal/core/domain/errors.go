package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrIndexUnavailable indicates the vector index failed to initialize
	// or accept writes. Fatal to indexing/search for the session; the
	// transaction store remains valid.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrQueryExecution indicates the hybrid search call failed on the
	// index side
	ErrQueryExecution = errors.New("query execution failed")

	// ErrFileTooLarge indicates an uploaded file exceeds the byte ceiling
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFormat indicates the uploaded content type is not a
	// tabular text format
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)

// MissingColumnsError reports which of the required canonical fields could
// not be resolved from a file's columns.
type MissingColumnsError struct {
	Missing []string // subset of {date, description, amount}
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("could not identify required columns: %s", strings.Join(e.Missing, ", "))
}

// IsSchemaError reports whether err is a column-resolution failure.
func IsSchemaError(err error) bool {
	var mce *MissingColumnsError
	return errors.As(err, &mce)
}
