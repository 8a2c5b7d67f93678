package driven

import (
	"context"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// JournalSink consumes the ordered change journal of one sync run.
// Persistence and display belong to the consumer; the engine only hands the
// events over.
type JournalSink interface {
	// Write delivers the run's events in append order.
	Write(ctx context.Context, sourceID string, events []domain.ChangeEvent) error
}
