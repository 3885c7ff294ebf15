// Redfish-mcp is an MCP server exposing Redfish BMC operations as tools.
//
// It lets MCP clients log in to BMCs, inspect system and firmware
// inventory, and run the firmware update workflow through named tools
// keyed by an opaque connection handle.
//
// Usage:
//
//	redfish-mcp serve [flags]
//
// By default the server speaks MCP over stdio; pass --http to serve the
// streamable HTTP transport instead. See 'redfish-mcp --help'.
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
	Use:   "redfish-mcp",
	Short: "Redfish MCP Server",
	Long: `An MCP server exposing Redfish BMC operations as tools.

Tools cover session login/logout, system and firmware inventory, and the
firmware update workflow (upload, placeholder detection, update trigger,
task polling). Connections are keyed by opaque handles returned from the
redfish_login tool.

Note: for direct command-line access to a BMC, use the separate
'redfishctl' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("redfish-mcp %s\n", version.Full())
	},
}
