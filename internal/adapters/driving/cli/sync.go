package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

var syncFull bool

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Synchronise records from sources",
	Long: `Triggers record synchronisation from configured sources.
If a source ID is provided, only that source is synchronised.
Otherwise, all sources are synchronised.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "ignore the stored cursor and fetch everything")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()
	opts := domain.SyncOptions{ForceFull: syncFull}

	if len(args) > 0 {
		sourceID := args[0]
		cmd.Printf("Synchronising source: %s...\n", sourceID)

		summary, err := syncOrchestrator.Sync(ctx, sourceID, opts)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		cmd.Println(summary.Line())
		return nil
	}

	cmd.Println("Synchronising all sources...")
	if err := syncOrchestrator.SyncAll(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	cmd.Println("All sources synchronised.")
	return nil
}
