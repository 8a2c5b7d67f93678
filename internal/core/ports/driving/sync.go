package driving

import (
	"context"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// SyncService coordinates record synchronisation from sources.
type SyncService interface {
	// Sync runs one synchronisation for a source and returns its summary.
	// A run already in progress for the same source yields a zero-effect
	// summary, not an error.
	Sync(ctx context.Context, sourceID string, opts domain.SyncOptions) (*domain.SyncSummary, error)

	// SyncAll synchronises every configured source in turn.
	SyncAll(ctx context.Context) error

	// Status returns sync status for a source.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// Phases a sync run moves through, in order. A run that is not running
// reports PhaseIdle or PhaseDone.
const (
	PhaseIdle        = "idle"
	PhaseReadCursor  = "read-cursor"
	PhaseFetching    = "fetching"
	PhaseClassifying = "classifying"
	PhaseReconciling = "reconciling"
	PhaseFinalizing  = "finalizing"
	PhaseDone        = "done"
)

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Phase is the run's current phase.
	Phase string

	// ParentsProcessed is the count of parent items reconciled so far.
	ParentsProcessed int

	// ErrorCount is the number of per-item errors encountered.
	ErrorCount int

	// LastRun is when the source last finished a run.
	LastRun time.Time

	// LastSummary is the one-line summary of the last finished run.
	LastSummary string
}
