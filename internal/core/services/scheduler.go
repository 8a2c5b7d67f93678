package services

import (
	"context"
	"sync"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// defaultHistoryKeep bounds the stored results per task.
const defaultHistoryKeep = 100

// Scheduler runs each source's sync on its configured interval.
// It is a pure core service with no external control API; one task per
// source, keyed by the source ID.
type Scheduler struct {
	sourceStore driven.SourceStore
	store       driven.TaskStore
	syncService driving.SyncService

	// HistoryKeep bounds the stored results per task.
	HistoryKeep int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler over the given stores.
func NewScheduler(sourceStore driven.SourceStore, store driven.TaskStore, syncService driving.SyncService) *Scheduler {
	return &Scheduler{
		sourceStore: sourceStore,
		store:       store,
		syncService: syncService,
		HistoryKeep: defaultHistoryKeep,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		logger.Warn("Scheduler: initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Refresh reconciles the task list with the configured sources. Called at
// startup and again whenever the source configuration changes: new sources
// get a task, removed sources lose theirs, changed intervals reschedule.
func (s *Scheduler) Refresh(ctx context.Context) error {
	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(sources))
	for _, source := range sources {
		known[source.ID] = true
		if err := s.ensureTask(ctx, source); err != nil {
			return err
		}
	}

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	for i := range tasks {
		if known[tasks[i].ID] {
			continue
		}
		if err := s.store.DeleteTask(ctx, tasks[i].ID); err != nil {
			logger.Warn("Scheduler: delete task %s: %v", tasks[i].ID, err)
		}
	}
	return nil
}

// ensureTask creates or updates the task for one source.
func (s *Scheduler) ensureTask(ctx context.Context, source domain.Source) error {
	task, err := s.store.GetTask(ctx, source.ID)
	if err != nil {
		return err
	}

	enabled := source.Interval > 0
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       source.ID,
			Name:     source.Name,
			Interval: source.Interval,
			Enabled:  enabled,
			NextRun:  time.Now().Add(source.Interval),
		}
	} else {
		if task.Interval != source.Interval {
			task.Interval = source.Interval
			task.NextRun = time.Now().Add(source.Interval)
		}
		task.Name = source.Name
		task.Enabled = enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("Scheduler: list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask syncs one source in the background. Overlap protection lives in
// the sync service's single flight; a still-running sync makes this a noop.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		summary, err := s.syncService.Sync(ctx, task.ID, domain.SyncOptions{})
		if summary != nil {
			result.ItemsProcessed = summary.Created + summary.Updated
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler: save task %s: %v", task.ID, saveErr)
		}

		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("Scheduler: record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, s.HistoryKeep); pruneErr != nil {
			logger.Warn("Scheduler: prune history: %v", pruneErr)
		}
	}()
}
