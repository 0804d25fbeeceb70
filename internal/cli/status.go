package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/internal/client"
	"github.com/agentregistry-dev/agentconsole/internal/version"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
	"github.com/agentregistry-dev/agentconsole/pkg/printer"
)

var statusOutputFormat string

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the console server",
	Long:  `Displays whether the console API is reachable, the server version, and resource counts.`,
	// No client from the root: status must report an unreachable server
	// instead of failing.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: runStatus,
}

func init() {
	StatusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "table", "Output format (table, json)")
}

type statusInfo struct {
	API          string `json:"api"`
	Database     string `json:"database,omitempty"`
	Version      string `json:"version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
	BuildTime    string `json:"build_time,omitempty"`
	Projects     int    `json:"projects"`
	Agents       int    `json:"agents"`
	CatalogItems int    `json:"catalog_items"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL := os.Getenv("CONSOLE_API_BASE_URL")
	if baseURL == "" {
		baseURL = client.DefaultBaseURL
	}
	token := os.Getenv("CONSOLE_API_TOKEN")

	info := statusInfo{
		API:          "unreachable",
		Projects:     -1,
		Agents:       -1,
		CatalogItems: -1,
	}

	ctx := contextOrBackground(cmd)

	// Single ping, no retries.
	c := client.NewClient(baseURL, token)
	if err := c.Ping(); err == nil {
		info.API = "ok"

		if ver, err := c.GetVersion(ctx); err == nil {
			info.Version = ver.Version
			info.GitCommit = ver.GitCommit
			info.BuildTime = ver.BuildTime
		}
		if health, err := c.Health(ctx); err == nil {
			info.Database = health.Database
		} else {
			info.Database = "unhealthy"
		}
		if projects, err := c.ListProjects(ctx); err == nil {
			info.Projects = len(projects)
		}
		if agents, err := c.ListAgents(ctx, ""); err == nil {
			info.Agents = len(agents)
		}
		page, err := c.QueryCatalog(ctx, models.CatalogQuery{
			Category:        "all",
			IncludeExternal: true,
			Page:            1,
			PageSize:        1,
		})
		if err == nil {
			info.CatalogItems = page.Metadata.TotalItems
		}
	}

	out := cmd.OutOrStdout()
	if statusOutputFormat == "json" {
		return printer.PrintJSON(out, info)
	}

	fmt.Fprintf(out, "consolectl version: %s\n", version.Version)
	fmt.Fprintf(out, "API:                %s\n", info.API)
	if info.Version != "" {
		fmt.Fprintf(out, "Server version:     %s\n", info.Version)
		fmt.Fprintf(out, "Git commit:         %s\n", info.GitCommit)
		fmt.Fprintf(out, "Build time:         %s\n", info.BuildTime)
	}
	if info.Database != "" {
		fmt.Fprintf(out, "Database:           %s\n", info.Database)
	}
	if info.Projects >= 0 {
		fmt.Fprintf(out, "Projects:           %d\n", info.Projects)
	}
	if info.Agents >= 0 {
		fmt.Fprintf(out, "Agents:             %d\n", info.Agents)
	}
	if info.CatalogItems >= 0 {
		fmt.Fprintf(out, "Catalog items:      %d\n", info.CatalogItems)
	}
	return nil
}
