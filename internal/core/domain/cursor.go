package domain

import "time"

// Cursor is the incremental sync watermark for a source. A nil Since means
// the next run is a full sync. The cursor is written only after a run
// completes without a fetch-level fatal error, never partially mid-run.
type Cursor struct {
	// SourceID links to the Source this cursor belongs to.
	SourceID string

	// Since is the last successfully synced timestamp. Nil means full sync.
	Since *time.Time

	// UpdatedAt is when the cursor was last written.
	UpdatedAt time.Time
}

// FullSync reports whether the cursor demands a full backfill.
func (c *Cursor) FullSync() bool {
	return c == nil || c.Since == nil
}
