package flags

import (
	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/internal/client"
)

var apiClient *client.Client

func SetAPIClient(client *client.Client) {
	apiClient = client
}

var FlagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Commands for managing feature flags",
	Long:  `Commands for reading and changing the console feature flags.`,
	Args:  cobra.ArbitraryArgs,
	Example: `consolectl flags list
consolectl flags set studioMinStars 20
consolectl flags set workflowsEnabled true`,
}

func init() {
	FlagsCmd.AddCommand(ListCmd)
	FlagsCmd.AddCommand(SetCmd)
}
