package core

import "errors"

// Error taxonomy. Adapters wrap the underlying cause alongside one of these,
// so callers can match with errors.Is.
var (
	// ErrStorageUnavailable is fatal: the database cannot be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrWriteFailed means the note was not stored. Nothing was written.
	ErrWriteFailed = errors.New("write failed")
	// ErrReadFailed means the collection could not be scanned.
	ErrReadFailed = errors.New("read failed")
	// ErrEmptyInput rejects blank submissions before they reach storage.
	ErrEmptyInput = errors.New("add note to save")
	// ErrNotReady is returned when storage is used before a successful Initialize.
	ErrNotReady = errors.New("storage is not ready")
)
