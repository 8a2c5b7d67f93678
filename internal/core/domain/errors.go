package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotConfigured indicates a source is missing its token or target
	// collection. The sync aborts immediately with a one-line status and
	// writes no journal entries.
	ErrNotConfigured = errors.New("source not configured")

	// ErrSyncInProgress indicates a sync is already running for the source.
	// Overlapping runs against the same collection are skipped, not queued.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSourceUnavailable indicates the remote API failed with a
	// non-rate-limit error. The fetch aborts but items collected so far
	// are still reconciled.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRecordNotVisible indicates a created record could not be read back
	// from the collection. The item is skipped for this run.
	ErrRecordNotVisible = errors.New("record not visible after create")

	// ErrFieldWriteRejected indicates the storage layer rejected a field
	// write. Only the offending field is skipped.
	ErrFieldWriteRejected = errors.New("field write rejected")

	// ErrInvalidCursor indicates a stored cursor could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrCollectionNotFound indicates the target collection does not exist.
	// Collection lifecycle is owned by the storage layer, so this is a
	// configuration problem, not something the engine repairs.
	ErrCollectionNotFound = errors.New("collection not found")
)
