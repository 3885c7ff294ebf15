package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redfishworks/redfishmcp/internal/config"
	"github.com/redfishworks/redfishmcp/internal/logging"
	"github.com/redfishworks/redfishmcp/internal/mcptools"
)

var (
	httpAddr      string
	httpPath      string
	endpointsPath string
	logLevel      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Redfish MCP server.

Without flags the server speaks MCP over stdio, the standard transport for
servers launched as a subprocess by an MCP client. Pass --http to serve
the streamable HTTP transport on a listen address instead.

The per-vendor endpoint map is read from --endpoints, falling back to
~/.config/redfishmcp/endpoints.yaml. A missing file means standard Redfish
paths for every vendor.`,
	Example: `  # Serve over stdio (for MCP client integration)
  redfish-mcp serve

  # Serve over streamable HTTP
  redfish-mcp serve --http :8787

  # Custom endpoint map and debug logging to stderr
  redfish-mcp serve --endpoints ./endpoints.yaml --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")
	serveCmd.Flags().StringVar(&httpPath, "path", "/mcp", "URL path for the HTTP transport")
	serveCmd.Flags().StringVar(&endpointsPath, "endpoints", "", "Path to the vendor endpoint map (YAML)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	endpoints, err := config.Load(endpointsPath)
	if err != nil {
		return fmt.Errorf("failed to load endpoint map: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcptools.NewServer(endpoints)

	if httpAddr != "" {
		err = server.ListenAndServe(ctx, httpAddr, httpPath)
	} else {
		err = server.RunStdio(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
