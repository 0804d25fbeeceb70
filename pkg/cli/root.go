// Package cli exposes the consolectl command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/internal/cli"
	"github.com/agentregistry-dev/agentconsole/internal/cli/catalog"
	"github.com/agentregistry-dev/agentconsole/internal/cli/flags"
	"github.com/agentregistry-dev/agentconsole/internal/client"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "consolectl",
	Short: "Agent console command line",
	Long: `consolectl runs the agent console server and talks to a running console
over its HTTP API.

The API location is read from CONSOLE_API_BASE_URL (default ` + client.DefaultBaseURL + `)
and an optional bearer token from CONSOLE_API_TOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.NewClientFromEnv()
		if err != nil {
			return fmt.Errorf("failed to connect to the console API: %w", err)
		}
		setClients(c)
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using console API at %s\n", c.BaseURL)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(cli.VersionCmd)
	rootCmd.AddCommand(cli.StatusCmd)
	rootCmd.AddCommand(cli.ServeCmd)
	rootCmd.AddCommand(catalog.CatalogCmd)
	rootCmd.AddCommand(flags.FlagsCmd)
}

func setClients(c *client.Client) {
	cli.SetAPIClient(c)
	catalog.SetAPIClient(c)
	flags.SetAPIClient(c)
}

// Root returns the consolectl root command.
func Root() *cobra.Command {
	return rootCmd
}
