package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recordhub/recordhub-cli/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync scheduler",
	Long: `Runs scheduled syncs for every source with an interval until
interrupted. Edits to the config or sources file are picked up without
a restart: the schedule is refreshed from the edited sources.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if syncScheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := syncScheduler.Start(ctx); err != nil {
		return err
	}
	cmd.Println("Scheduler started. Press Ctrl+C to stop.")

	if configWatcher != nil {
		go func() {
			err := configWatcher.Watch(ctx, func() {
				if err := syncScheduler.Refresh(ctx); err != nil {
					logger.Warn("refreshing scheduler: %v", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cmd.Println("Stopping scheduler...")
	cancel()
	return syncScheduler.Stop()
}
