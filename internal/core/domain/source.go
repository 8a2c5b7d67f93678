package domain

import (
	"time"
)

// Source represents a configured sync source. Each source owns a disjoint
// cursor and a disjoint target collection, so distinct sources may sync
// concurrently.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the connector type (e.g. "readwise", "tracker").
	Type string

	// Name is the human-readable name, used as the external-id prefix.
	Name string

	// Collection is the target collection name in the record store.
	Collection string

	// Token authenticates against the remote API.
	Token string

	// Interval is how often the scheduler syncs this source.
	// Zero means manual only.
	Interval time.Duration

	// SinceOverride, when set, replaces the stored cursor for the next run.
	SinceOverride *time.Time

	// ExcludeCategories drops parents whose category matches, compared
	// case-insensitively by the connector's rules.
	ExcludeCategories []string

	// Config carries connector-specific settings (repo filters, OAuth
	// endpoints and the like).
	Config map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// Configured reports whether the source can sync at all.
// A missing token or target collection aborts a run before fetching.
func (s *Source) Configured() bool {
	return s.Token != "" && s.Collection != ""
}

// SyncOptions adjusts a single sync run.
type SyncOptions struct {
	// ForceFull ignores the stored cursor and fetches everything.
	ForceFull bool
}
