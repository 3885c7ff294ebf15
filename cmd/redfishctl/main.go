// Redfishctl is a command-line client for Redfish BMCs.
//
// It provides direct access to the operations the MCP server exposes as
// tools: system inventory, firmware inventory, and the firmware update
// workflow (upload, placeholder detection, update trigger, task polling).
//
// Usage:
//
//	redfishctl [command] [flags]
//
// See 'redfishctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redfishworks/redfishmcp/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "redfishctl",
	Short: "Redfish BMC Command-Line Client",
	Long: `A command-line client for Redfish BMCs.

Covers session login, system and firmware inventory, and the firmware
update workflow. Each command logs in, performs its operation, and logs
out again; for long-lived connections use the 'redfish-mcp' server.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("redfishctl %s\n", version.Full())
	},
}
