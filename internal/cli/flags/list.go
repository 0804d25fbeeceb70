package flags

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/pkg/printer"
)

var outputFormat string

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feature flags",
	RunE:  runList,
}

func init() {
	ListCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	if apiClient == nil {
		return fmt.Errorf("API client not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	flags, err := apiClient.ListFlags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list flags: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return printer.PrintJSON(out, flags)
	}

	t := printer.NewTablePrinter(out)
	t.SetHeaders("Name", "Kind", "Value", "Default", "Description")
	for _, f := range flags {
		t.AddRow(
			f.Name,
			f.Kind,
			fmt.Sprint(f.Value),
			fmt.Sprint(f.Default),
			printer.TruncateString(f.Description, 60),
		)
	}
	return t.Render()
}
