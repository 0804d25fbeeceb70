package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/internal/console/exporter"
)

var (
	exportPageSize int
	exportMode     string
)

var ExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the full catalog to a file",
	Long: `Export every catalog integration to a YAML (.yaml, .yml) or JSON file.

The exported file can be served back to the console with CONSOLE_CATALOG_PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	ExportCmd.Flags().IntVar(&exportPageSize, "page-size", 100, "Items fetched per request")
	ExportCmd.Flags().StringVar(&exportMode, "mode", "", "Threshold mode used while paging (studio, dev)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if apiClient == nil {
		return fmt.Errorf("API client not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc := exporter.NewService(apiClient)
	svc.SetPageSize(exportPageSize)
	svc.SetMode(exportMode)

	count, err := svc.ExportToPath(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d integrations to %s\n", count, args[0])
	return nil
}
