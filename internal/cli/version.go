package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/agentregistry-dev/agentconsole/internal/client"
	"github.com/agentregistry-dev/agentconsole/internal/version"
	"github.com/agentregistry-dev/agentconsole/pkg/printer"
)

var apiClient *client.Client

func SetAPIClient(client *client.Client) {
	apiClient = client
}

type VersionOutput struct {
	CLIVersion           string `json:"cli_version"`
	GitCommit            string `json:"git_commit"`
	BuildDate            string `json:"build_date"`
	ServerVersion        string `json:"server_version,omitempty"`
	ServerGitCommit      string `json:"server_git_commit,omitempty"`
	ServerBuildDate      string `json:"server_build_date,omitempty"`
	UpdateRecommendation string `json:"update_recommendation,omitempty"`
}

var jsonOutput bool

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Displays the version of consolectl and, when reachable, of the console server.`,
	// Build the client without a ping so the CLI version prints offline.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.FromEnv()
		if err != nil {
			return err
		}
		SetAPIClient(c)
		return nil
	},
	RunE: runVersion,
}

func init() {
	VersionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	output := VersionOutput{
		CLIVersion: version.Version,
		GitCommit:  version.GitCommit,
		BuildDate:  version.BuildDate,
	}

	var (
		serverVersion *client.ServerVersion
		err           = fmt.Errorf("API client not initialized")
	)
	if apiClient != nil {
		serverVersion, err = apiClient.GetVersion(contextOrBackground(cmd))
	}
	if err == nil {
		output.ServerVersion = serverVersion.Version
		output.ServerGitCommit = serverVersion.GitCommit
		output.ServerBuildDate = serverVersion.BuildTime
		output.UpdateRecommendation = updateRecommendation(version.Version, serverVersion.Version)
	}

	if jsonOutput {
		return printer.PrintJSON(out, output)
	}

	fmt.Fprintf(out, "consolectl version %s\n", output.CLIVersion)
	fmt.Fprintf(out, "Git commit: %s\n", output.GitCommit)
	fmt.Fprintf(out, "Build date: %s\n", output.BuildDate)

	if serverVersion != nil {
		fmt.Fprintf(out, "Server version: %s\n", output.ServerVersion)
		fmt.Fprintf(out, "Server git commit: %s\n", output.ServerGitCommit)
		fmt.Fprintf(out, "Server build date: %s\n", output.ServerBuildDate)

		if output.UpdateRecommendation != "" {
			fmt.Fprintln(out, "\n-------------------------------")
			fmt.Fprintln(out, output.UpdateRecommendation)
		}
	} else {
		fmt.Fprintf(out, "Error getting server version: %v\n", err)
	}
	return nil
}

// updateRecommendation compares semantic versions and returns an empty
// string when they match or either one is not a valid semver.
func updateRecommendation(cliVersion, serverVersion string) string {
	cv, sv := version.EnsureVPrefix(cliVersion), version.EnsureVPrefix(serverVersion)
	if !semver.IsValid(cv) || !semver.IsValid(sv) {
		return ""
	}
	switch semver.Compare(cv, sv) {
	case 1:
		return "CLI version is newer than server version. Consider updating the server."
	case -1:
		return "Server version is newer than CLI version. Consider updating the CLI."
	}
	return ""
}
