// Command recordhub synchronises remote sources into local record
// collections.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/recordhub/recordhub-cli/internal/adapters/driven/config/file"
	"github.com/recordhub/recordhub-cli/internal/adapters/driven/storage/sqlite"
	"github.com/recordhub/recordhub-cli/internal/adapters/driving/cli"
	"github.com/recordhub/recordhub-cli/internal/connectors/contacts"
	"github.com/recordhub/recordhub-cli/internal/connectors/readwise"
	"github.com/recordhub/recordhub-cli/internal/connectors/tracker"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/services"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	// Per-source settings live in sources.toml next to config.toml, so the
	// daemon's config watcher picks up hand-edited sources as well.
	sourceStore, err := file.NewSourceStore("")
	if err != nil {
		return fmt.Errorf("opening sources: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	factory := services.NewConnectorFactory()
	factory.Register(readwise.ConnectorType, readwise.Builder)
	factory.Register(tracker.ConnectorType, tracker.Builder)
	factory.Register(contacts.ConnectorType, contacts.Builder)

	cursorStore := store.CursorStore()

	orchestrator := services.NewSyncOrchestrator(
		sourceStore,
		cursorStore,
		store.RecordStore(),
		store.ContentSink(),
		store.JournalSink(),
		factory,
	)
	sourceService := services.NewSourceService(sourceStore, cursorStore, factory)
	scheduler := services.NewScheduler(sourceStore, store.TaskStore(), orchestrator)
	if keep := configStore.GetInt("scheduler.history_keep"); keep > 0 {
		scheduler.HistoryKeep = keep
	}

	// Target collections must exist before a sync run starts.
	if err := ensureCollections(store, sourceStore); err != nil {
		return err
	}

	cli.SetServices(cli.Services{
		Sync:      orchestrator,
		Sources:   sourceService,
		Registry:  factory,
		Journal:   store,
		Scheduler: scheduler,
		Config:    configStore,
	})

	return cli.Execute()
}

// ensureCollections bootstraps the target collection of every configured
// source with the sync field schema.
func ensureCollections(store *sqlite.Store, sources driven.SourceStore) error {
	ctx := context.Background()
	configured, err := sources.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	for _, source := range configured {
		if source.Collection == "" {
			continue
		}
		if err := store.EnsureCollection(ctx, source.Collection, sqlite.DefaultSyncFields()); err != nil {
			return fmt.Errorf("ensuring collection %q: %w", source.Collection, err)
		}
		logger.Debug("collection ready: %s", source.Collection)
	}
	return nil
}
