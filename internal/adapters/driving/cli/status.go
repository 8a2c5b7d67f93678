package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const statusJournalLimit = 10

var statusCmd = &cobra.Command{
	Use:   "status [source-id]",
	Short: "Show sync status and recent changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil || sourceService == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()

	var sourceIDs []string
	if len(args) > 0 {
		sourceIDs = args
	} else {
		sources, err := sourceService.List(ctx)
		if err != nil {
			return fmt.Errorf("listing sources: %w", err)
		}
		if len(sources) == 0 {
			cmd.Println("No sources configured.")
			return nil
		}
		for _, source := range sources {
			sourceIDs = append(sourceIDs, source.ID)
		}
	}

	for _, sourceID := range sourceIDs {
		status, err := syncOrchestrator.Status(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("status for %s: %w", sourceID, err)
		}

		state := status.Phase
		if status.Running {
			state = fmt.Sprintf("%s (running, %d parents, %d errors)",
				status.Phase, status.ParentsProcessed, status.ErrorCount)
		}
		cmd.Printf("%s: %s\n", sourceID, state)
		if status.LastSummary != "" {
			cmd.Printf("  last run: %s (%s)\n", status.LastSummary,
				status.LastRun.Format("2006-01-02 15:04:05"))
		}

		if journalReader == nil {
			continue
		}
		events, err := journalReader.ListEvents(ctx, sourceID, statusJournalLimit)
		if err != nil {
			return fmt.Errorf("journal for %s: %w", sourceID, err)
		}
		for _, event := range events {
			cmd.Printf("  %s %s\n", event.Verb, event.Title)
		}
	}

	return nil
}
