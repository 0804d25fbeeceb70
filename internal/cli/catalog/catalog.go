package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/internal/client"
)

var apiClient *client.Client

func SetAPIClient(client *client.Client) {
	apiClient = client
}

var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Commands for browsing the integration catalog",
	Long:  `Commands for browsing and exporting the integration catalog.`,
	Args:  cobra.ArbitraryArgs,
	Example: `consolectl catalog list
consolectl catalog list --category skill --sort popular
consolectl catalog list --search slack --exclude-external -o json
consolectl catalog export ./catalog.yaml`,
}

func init() {
	CatalogCmd.AddCommand(ListCmd)
	CatalogCmd.AddCommand(ExportCmd)
}
