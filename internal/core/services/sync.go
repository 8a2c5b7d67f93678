package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates record synchronisation. One run moves
// through read-cursor, fetch, classify, reconcile and finalize; at most
// one run per source is in flight at a time, concurrent triggers for the
// same source are skipped silently.
type SyncOrchestrator struct {
	sourceStore driven.SourceStore
	cursorStore driven.CursorStore
	recordStore driven.RecordStore
	content     driven.ContentSink
	journal     driven.JournalSink
	factory     driven.ConnectorFactory

	// Status tracking
	mu       sync.RWMutex
	statuses map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The journal sink is optional; nil discards change events after the
// summary is built.
func NewSyncOrchestrator(
	sourceStore driven.SourceStore,
	cursorStore driven.CursorStore,
	recordStore driven.RecordStore,
	content driven.ContentSink,
	journal driven.JournalSink,
	factory driven.ConnectorFactory,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		sourceStore: sourceStore,
		cursorStore: cursorStore,
		recordStore: recordStore,
		content:     content,
		journal:     journal,
		factory:     factory,
		statuses:    make(map[string]*driving.SyncStatus),
	}
}

// Sync runs one synchronisation for a source.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string, opts domain.SyncOptions) (*domain.SyncSummary, error) {
	// 1. Get source configuration
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if !source.Configured() {
		return nil, fmt.Errorf("source %s: %w", sourceID, domain.ErrNotConfigured)
	}

	// 2. Claim the single flight for this source
	if !o.begin(sourceID) {
		logger.Debug("Sync already running for %s, skipping", sourceID)
		return &domain.SyncSummary{SourceID: sourceID}, nil
	}
	defer o.finish(sourceID)

	// 3. Create connector from source
	if o.factory == nil {
		return nil, fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	// 4. Resolve the target collection; it must exist before a run starts
	collection, err := o.recordStore.Collection(ctx, source.Collection)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", source.Collection, err)
	}

	reconciler := NewReconciler(collection, o.content)
	if err := reconciler.Load(ctx); err != nil {
		return nil, err
	}

	// 5. Resolve the fetch watermark
	o.setPhase(sourceID, driving.PhaseReadCursor)
	since, err := o.resolveSince(ctx, source, opts, reconciler.RecordCount() == 0)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting sync for source %s", sourceID)
	if since == nil {
		logger.Debug("Full sync for %s", sourceID)
	} else {
		logger.Debug("Incremental sync for %s since %s", sourceID, since.Format(time.RFC3339))
	}

	// 6. Fetch. The run start is the next cursor value: items changing
	// while pages are in flight get picked up again next run.
	runStart := time.Now()
	o.setPhase(sourceID, driving.PhaseFetching)
	items, fetchErr := connector.Fetch(ctx, since)
	if fetchErr != nil {
		if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
			return nil, fetchErr
		}
		// Partial results are still reconciled; the cursor stays put so
		// the missed pages are retried next run.
		logger.Warn("Fetch for %s incomplete: %v", sourceID, fetchErr)
	}

	// 7. Classify into parent groups
	o.setPhase(sourceID, driving.PhaseClassifying)
	groups := Classify(items, connector.Rules())
	logger.Debug("Classified %d items into %d groups", len(items), len(groups))

	// 8. Reconcile each group; one bad parent never aborts the run
	o.setPhase(sourceID, driving.PhaseReconciling)
	summary := &domain.SyncSummary{SourceID: sourceID}
	for _, group := range groups {
		action, err := reconciler.Reconcile(ctx, connector, group)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			summary.Skipped++
			o.bumpError(sourceID)
			logger.Warn("Skipping item %s: %v", group.Parent.ID, err)
			continue
		}
		switch action {
		case domain.ActionCreate:
			summary.Created++
		case domain.ActionUpdate:
			summary.Updated++
		}
		o.bumpProcessed(sourceID)
	}
	summary.Journal = reconciler.Journal()

	// 9. Finalize: hand the journal over, then advance the cursor only
	// when every page arrived
	o.setPhase(sourceID, driving.PhaseFinalizing)
	if o.journal != nil && len(summary.Journal) > 0 {
		if err := o.journal.Write(ctx, sourceID, summary.Journal); err != nil {
			logger.Warn("Journal write for %s failed: %v", sourceID, err)
		}
	}

	if fetchErr == nil {
		cursor := domain.Cursor{SourceID: sourceID, Since: &runStart, UpdatedAt: time.Now()}
		if err := o.cursorStore.Save(ctx, cursor); err != nil {
			return summary, fmt.Errorf("save cursor: %w", err)
		}
	}

	logger.Info("Sync complete for %s: %s", sourceID, summary.Line())
	o.recordRun(sourceID, summary)
	return summary, nil
}

// SyncAll synchronises every configured source in turn.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) error {
	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var errs []error
	for _, source := range sources {
		if _, err := o.Sync(ctx, source.ID, domain.SyncOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", source.ID, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Status returns sync status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.statuses[sourceID]; ok {
		// Return a copy to avoid race conditions
		copied := *status
		return &copied, nil
	}

	return &driving.SyncStatus{
		SourceID: sourceID,
		Phase:    driving.PhaseIdle,
	}, nil
}

// resolveSince picks the fetch watermark for a run. A forced full run and
// an empty target collection both ignore the stored cursor; a per-source
// override replaces it.
func (o *SyncOrchestrator) resolveSince(ctx context.Context, source *domain.Source, opts domain.SyncOptions, emptyCollection bool) (*time.Time, error) {
	if opts.ForceFull {
		return nil, nil
	}
	if source.SinceOverride != nil {
		return source.SinceOverride, nil
	}
	if emptyCollection {
		// Nothing to dedup against, backfill from scratch.
		return nil, nil
	}

	cursor, err := o.cursorStore.Get(ctx, source.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	return cursor.Since, nil
}

// begin claims the single flight for a source. Returns false when a run is
// already in progress.
func (o *SyncOrchestrator) begin(sourceID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	status, ok := o.statuses[sourceID]
	if ok && status.Running {
		return false
	}
	if !ok {
		status = &driving.SyncStatus{SourceID: sourceID}
		o.statuses[sourceID] = status
	}
	status.Running = true
	status.Phase = driving.PhaseReadCursor
	status.ParentsProcessed = 0
	status.ErrorCount = 0
	return true
}

func (o *SyncOrchestrator) finish(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.statuses[sourceID]; ok {
		status.Running = false
		status.Phase = driving.PhaseDone
	}
}

func (o *SyncOrchestrator) setPhase(sourceID, phase string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.statuses[sourceID]; ok {
		status.Phase = phase
	}
}

func (o *SyncOrchestrator) bumpProcessed(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.statuses[sourceID]; ok {
		status.ParentsProcessed++
	}
}

func (o *SyncOrchestrator) bumpError(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.statuses[sourceID]; ok {
		status.ErrorCount++
	}
}

func (o *SyncOrchestrator) recordRun(sourceID string, summary *domain.SyncSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.statuses[sourceID]; ok {
		status.LastRun = time.Now()
		status.LastSummary = summary.Line()
	}
}
