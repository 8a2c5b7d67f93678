package driven

import (
	"context"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// CursorStore persists the per-source sync watermark.
// The cursor is read before a run and written only after a run finishes
// without a fetch-level fatal error.
type CursorStore interface {
	// Save stores or updates a cursor.
	Save(ctx context.Context, cursor domain.Cursor) error

	// Get retrieves the cursor for a source.
	// Returns domain.ErrNotFound when no cursor has been written yet.
	Get(ctx context.Context, sourceID string) (*domain.Cursor, error)

	// Delete removes the cursor for a source.
	Delete(ctx context.Context, sourceID string) error
}
