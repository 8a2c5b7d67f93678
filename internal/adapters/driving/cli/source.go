package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage sync sources",
}

var (
	sourceAddName       string
	sourceAddCollection string
	sourceAddToken      string
	sourceAddInterval   string
	sourceAddSince      string
	sourceAddExclude    []string
	sourceAddConfig     []string
)

var sourceAddCmd = &cobra.Command{
	Use:   "add [connector-type]",
	Short: "Add a new sync source",
	Long: `Adds a source of the given connector type. The API token is read
from --token or prompted for without echo. Connector-specific settings
are passed as --set key=value pairs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its cursor",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

func init() {
	sourceAddCmd.Flags().StringVar(&sourceAddName, "name", "", "source name (external-id prefix)")
	sourceAddCmd.Flags().StringVar(&sourceAddCollection, "collection", "", "target collection name")
	sourceAddCmd.Flags().StringVar(&sourceAddToken, "token", "", "API token (prompted if omitted)")
	sourceAddCmd.Flags().StringVar(&sourceAddInterval, "interval", "", "sync interval, e.g. 30m or 1h (manual if omitted)")
	sourceAddCmd.Flags().StringVar(&sourceAddSince, "since", "", "only sync items changed after this date, e.g. 2024-01-01")
	sourceAddCmd.Flags().StringSliceVar(&sourceAddExclude, "exclude", nil, "categories to exclude")
	sourceAddCmd.Flags().StringArrayVar(&sourceAddConfig, "set", nil, "connector setting as key=value")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil || connectorRegistry == nil {
		return errors.New("source service not configured")
	}

	if len(args) == 0 {
		return fmt.Errorf("connector type is required, one of: %s",
			strings.Join(connectorRegistry.SupportedTypes(), ", "))
	}
	connectorType := args[0]

	name := sourceAddName
	if name == "" {
		name = connectorType
	}

	token := sourceAddToken
	if token == "" {
		cmd.Print("API token: ")
		token = readPassword()
		cmd.Println()
	}

	interval, err := domain.ParseInterval(sourceAddInterval)
	if err != nil {
		return err
	}

	since, err := parseSince(sourceAddSince)
	if err != nil {
		return err
	}

	config := make(map[string]string, len(sourceAddConfig))
	for _, pair := range sourceAddConfig {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid --set value %q, expected key=value", pair)
		}
		config[key] = value
	}

	id, err := sourceService.Add(context.Background(), domain.Source{
		Type:              connectorType,
		Name:              name,
		Collection:        sourceAddCollection,
		Token:             token,
		Interval:          interval,
		SinceOverride:     since,
		ExcludeCategories: sourceAddExclude,
		Config:            config,
	})
	if err != nil {
		return fmt.Errorf("adding source: %w", err)
	}

	cmd.Printf("Source added: %s\n", id)
	return nil
}

func runSourceList(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	for _, source := range sources {
		interval := "manual"
		if source.Interval > 0 {
			interval = source.Interval.String()
		}
		cmd.Printf("%s  %-10s  %-20s  collection=%s  interval=%s\n",
			source.ID, source.Type, source.Name, source.Collection, interval)
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}

	cmd.Printf("Source removed: %s\n", args[0])
	return nil
}

// parseSince parses the --since flag, accepting a plain date or a full
// RFC3339 timestamp. Empty means no override.
func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: since %q, expected 2006-01-02 or RFC3339", domain.ErrInvalidInput, s)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
