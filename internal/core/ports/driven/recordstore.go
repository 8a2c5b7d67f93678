package driven

import (
	"context"
	"time"
)

// RecordStore is the host storage capability the engine writes records
// through. The engine never depends on a concrete implementation and never
// manages collection lifecycle; collections exist before a sync starts.
type RecordStore interface {
	// GetAllCollections lists every collection in the store.
	GetAllCollections(ctx context.Context) ([]Collection, error)

	// Collection returns the named collection.
	// Returns domain.ErrCollectionNotFound if it does not exist.
	Collection(ctx context.Context, name string) (Collection, error)
}

// Collection holds records keyed by an opaque GUID assigned on creation.
type Collection interface {
	// Name returns the collection's display name.
	Name() string

	// GetAllRecords returns every record in the collection. Creation is
	// eventually visible: a record created moments ago may be missing from
	// the result and callers re-read before writing fields to it.
	GetAllRecords(ctx context.Context) ([]Record, error)

	// CreateRecord creates a record with the given title and returns its
	// GUID. The record's fields are set separately once it is readable.
	CreateRecord(ctx context.Context, title string) (string, error)
}

// Record is one persisted entity. Field access is by field id; a missing
// field yields nil, which callers treat as "skip this write".
type Record interface {
	// GUID returns the storage-assigned identifier.
	GUID() string

	// Title returns the record's display name.
	Title() string

	// Field returns the named field, or nil if the record has no such
	// field.
	Field(id string) Field
}

// Field reads and writes a single record attribute.
//
// Choice-type attributes are written by human-readable label via SetChoice;
// when no matching choice exists the storage layer falls back to a plain
// text write through Set. That fallback is expected behaviour, not an error.
type Field interface {
	// Text returns the field's string value.
	Text() string

	// Number returns the field's numeric value.
	Number() float64

	// Date returns the field's time value; the zero time means unset.
	Date() time.Time

	// Choice returns the selected choice label, if any.
	Choice() string

	// Set writes a plain value (string, float64, int, time.Time).
	// Returns an error wrapping domain.ErrFieldWriteRejected when the
	// storage layer refuses the write.
	Set(value any) error

	// SetChoice selects a choice by label. Returns false when no choice
	// with that label exists; callers then fall back to Set.
	SetChoice(label string) bool
}
