package flags

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var SetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a feature flag",
	Long: `Set a feature flag. Boolean flags accept true/false, integer thresholds
accept non-negative numbers.`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	if apiClient == nil {
		return fmt.Errorf("API client not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	flag, err := apiClient.SetFlag(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to set flag %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %v\n", flag.Name, flag.Value)
	return nil
}
