package domain

import "time"

// ExternalIDSeparator joins the source name and the source-native item id.
const ExternalIDSeparator = ":"

// Well-known record field ids. A collection that lacks one of these simply
// never receives the corresponding write.
const (
	FieldExternalID = "external_id"
	FieldSource     = "source"
	FieldAuthor     = "author"
	FieldURL        = "url"
	FieldCategory   = "category"
	FieldState      = "state"
	FieldChildCount = "child_count"
	FieldCapturedAt = "captured_at"
	FieldUpdatedAt  = "updated_at"
)

// ExternalID derives the deduplication key for an item. It is globally
// unique within the local store and immutable once assigned. Records are
// matched on this key only, never on title or content.
func ExternalID(sourceName, itemID string) string {
	return sourceName + ExternalIDSeparator + itemID
}

// ChangeMarker renders t as the RFC3339 marker stored in updated_at.
// A zero time yields the empty string, which disables marker-based
// change detection for the source.
func ChangeMarker(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// RecordFields is the normalized payload written to a local record.
// The remote source is the source of truth: on update every field is
// overwritten, local edits to mirrored fields are not preserved.
type RecordFields struct {
	// ExternalID is the dedup key (see ExternalID).
	ExternalID string

	// Title is the record's display name.
	Title string

	// Source is the human-readable source name (e.g. "Readwise").
	Source string

	// Author is the originating author, if any.
	Author string

	// URL links back to the item at the source.
	URL string

	// Category is the source's classification, written by label to
	// choice-type attributes.
	Category string

	// State is the item's lifecycle state at the source (e.g. an open
	// or closed issue), written by label to choice-type attributes.
	// Empty when the source has no notion of state.
	State string

	// ChildCount is the number of merged children at this sync.
	ChildCount int

	// CapturedAt is when the source captured the parent item.
	CapturedAt time.Time

	// UpdatedAt is the source's last-modified marker in RFC3339 form.
	// A moved marker flags the record as changed even when the child
	// count is unchanged. Empty disables marker comparison, leaving
	// child count as the only change signal.
	UpdatedAt string

	// Extra carries additional source-specific text fields keyed by
	// field id.
	Extra map[string]string
}

// ReconcileAction is the decision the reconciler takes for one parent.
type ReconcileAction int

const (
	// ActionNoop means the record is already up to date. No write, no
	// journal entry.
	ActionNoop ReconcileAction = iota

	// ActionCreate means no record with the external id exists yet.
	ActionCreate

	// ActionUpdate means the record exists and gained content or changed
	// a tracked field.
	ActionUpdate
)

// String returns the action name for logging.
func (a ReconcileAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	default:
		return "noop"
	}
}
