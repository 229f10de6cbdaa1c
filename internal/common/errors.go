// Package common defines shared sentinel errors used across the upload
// pipeline. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Intake validation errors. Batch-level conditions surface through
	// the intake report, never as call failures.
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	// Lookup / mutation errors.
	ErrEntryNotFound = errors.New("entry not found")
	ErrNotRetryable  = errors.New("entry is not in a retryable state")

	// Manager lifecycle errors.
	ErrManagerClosed = errors.New("upload manager is closed")
)
