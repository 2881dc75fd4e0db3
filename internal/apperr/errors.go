// Package apperr holds the sentinel errors shared across mdpad layers.
package apperr

import "errors"

// Sentinel errors. Callers match them with errors.Is; the HTTP and MCP layers
// map each one to a status code or tool error.
var (
	// ErrEmptyNote rejects a note whose text is only whitespace.
	ErrEmptyNote = errors.New("note is empty")
	// ErrIndexOutOfRange means the index names no note.
	ErrIndexOutOfRange = errors.New("note index out of range")
	// ErrUnknownFormat names a toolbar format that does not exist.
	ErrUnknownFormat = errors.New("unknown markup format")
	// ErrNothingToExport is returned by export when the store is empty.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrClosed is returned once the service has been closed.
	ErrClosed = errors.New("service closed")
)
