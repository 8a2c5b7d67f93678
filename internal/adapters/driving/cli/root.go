// Package cli implements the command-line interface using cobra.
// Commands depend on driving port interfaces wired in by main; a command
// invoked before wiring reports "not configured" instead of panicking.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// JournalReader lists persisted change journal events.
type JournalReader interface {
	ListEvents(ctx context.Context, sourceID string, limit int) ([]domain.ChangeEvent, error)
}

// SchedulerControl drives the background sync scheduler.
type SchedulerControl interface {
	Start(ctx context.Context) error
	Stop() error
	Refresh(ctx context.Context) error
}

// ConfigWatcher blocks watching the config file, invoking the callback
// after each reload.
type ConfigWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Services injected by main before Execute.
var (
	syncOrchestrator  driving.SyncService
	sourceService     driving.SourceService
	connectorRegistry driven.ConnectorFactory
	journalReader     JournalReader
	syncScheduler     SchedulerControl
	configWatcher     ConfigWatcher
)

// Services bundles everything the CLI needs.
type Services struct {
	Sync      driving.SyncService
	Sources   driving.SourceService
	Registry  driven.ConnectorFactory
	Journal   JournalReader
	Scheduler SchedulerControl
	Config    ConfigWatcher
}

// SetServices wires the CLI to its backing services.
func SetServices(s Services) {
	syncOrchestrator = s.Sync
	sourceService = s.Sources
	connectorRegistry = s.Registry
	journalReader = s.Journal
	syncScheduler = s.Scheduler
	configWatcher = s.Config
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "recordhub",
	Short: "Synchronise remote sources into local record collections",
	Long: `RecordHub pulls items from remote services (Readwise highlights,
issue trackers, contact directories) and reconciles them into local
record collections, keeping an incremental cursor per source.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
