package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/app"
	"github.com/agentregistry-dev/agentconsole/internal/console/config"
	"github.com/agentregistry-dev/agentconsole/internal/version"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

var (
	serveAddress string
	serveMode    string
	serveNoSeed  bool
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console server",
	Long: `Runs the console HTTP API, MCP bridge and metrics endpoint.

Configuration is read from CONSOLE_* environment variables and an optional .env
file; flags given here override them.`,
	Example: `consolectl serve
consolectl serve --address :9090 --mode dev`,
	// The server does not need an API client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides CONSOLE_SERVER_ADDRESS)")
	ServeCmd.Flags().StringVar(&serveMode, "mode", "", "Console mode: studio or dev (overrides CONSOLE_MODE)")
	ServeCmd.Flags().BoolVar(&serveNoSeed, "no-seed", false, "Skip importing the demo projects")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	applyServeOverrides(cfg)

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	versionInfo := &v0.VersionBody{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildTime: version.BuildDate,
	}

	a, err := app.New(ctx, cfg, versionInfo, types.AppOptions{})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Console listening on %s (mode %s)\n", cfg.ServerAddress, cfg.Mode)
	return a.Run(ctx)
}

func applyServeOverrides(cfg *config.Config) {
	if serveAddress != "" {
		cfg.ServerAddress = serveAddress
	}
	if serveMode != "" {
		cfg.Mode = serveMode
	}
	if serveNoSeed {
		cfg.SeedDemoData = false
	}
}

// contextOrBackground guards commands invoked directly in tests, where cobra
// has not set a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
