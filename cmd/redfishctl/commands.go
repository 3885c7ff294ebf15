package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/redfishworks/redfishmcp/internal/config"
	"github.com/redfishworks/redfishmcp/internal/logging"
	"github.com/redfishworks/redfishmcp/internal/redfish"
)

// Connection flags, shared by every device command
var (
	bmcHost       string
	bmcPort       int
	bmcUser       string
	bmcPassword   string
	verifySSL     bool
	timeoutSec    int
	bmcType       string
	endpointsPath string
	logLevel      string
	outputFormat  string
)

// Firmware command flags
var (
	updateTarget   string
	preserveConfig bool
	taskTimeoutSec int
	systemID       string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&bmcHost, "host", "", "BMC host address or IP (required)")
	rootCmd.PersistentFlags().IntVar(&bmcPort, "port", 443, "BMC HTTPS port")
	rootCmd.PersistentFlags().StringVar(&bmcUser, "username", "", "BMC username")
	rootCmd.PersistentFlags().StringVar(&bmcPassword, "password", "", "BMC password (prompted when omitted)")
	rootCmd.PersistentFlags().BoolVar(&verifySSL, "verify-ssl", false, "Verify the BMC TLS certificate")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 60, "Per-request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&bmcType, "bmc-type", "default", "Vendor key in the endpoint map")
	rootCmd.PersistentFlags().StringVar(&endpointsPath, "endpoints", "", "Path to the vendor endpoint map (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")

	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(firmwareCmd)
	rootCmd.AddCommand(powerCycleCmd)

	firmwareCmd.AddCommand(firmwareListCmd)
	firmwareCmd.AddCommand(firmwareInfoCmd)
	firmwareCmd.AddCommand(firmwareUpdateCmd)
	firmwareCmd.AddCommand(firmwareDeleteUploadCmd)
}

// withClient runs fn with an authenticated client, handling login, logout
// and signal cancellation.
func withClient(fn func(ctx context.Context, client *redfish.Client) error) error {
	if bmcHost == "" {
		return fmt.Errorf("--host is required")
	}

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	if bmcPassword == "" {
		fmt.Fprintf(os.Stderr, "Password for %s@%s: ", bmcUser, bmcHost)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		bmcPassword = string(pw)
	}

	endpoints, err := config.Load(endpointsPath)
	if err != nil {
		return fmt.Errorf("failed to load endpoint map: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redfish.NewClient(redfish.Options{
		Host:      bmcHost,
		Port:      bmcPort,
		Username:  bmcUser,
		Password:  bmcPassword,
		VerifyTLS: verifySSL,
		Timeout:   time.Duration(timeoutSec) * time.Second,
		Vendor:    bmcType,
		Endpoints: endpoints,
	})

	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logout failed: %v\n", err)
		}
	}()

	return fn(ctx, client)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List systems with identity, power and health fields",
	Example: `  # Table output
  redfishctl systems --host 10.0.0.9 --username ADMIN

  # JSON output for scripting
  redfishctl systems --host 10.0.0.9 --username ADMIN --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			summaries, err := client.Systems().Summaries(ctx)
			if err != nil {
				return fmt.Errorf("failed to list systems: %w", err)
			}

			if outputFormat == "json" {
				return printJSON(summaries)
			}

			fmt.Printf("Found %d system(s):\n\n", len(summaries))
			for i, s := range summaries {
				fmt.Printf("%d. %s (%s)\n", i+1, s.Name, s.ID)
				fmt.Printf("   Manufacturer: %s\n", s.Manufacturer)
				fmt.Printf("   Model:        %s\n", s.Model)
				fmt.Printf("   Serial:       %s\n", s.SerialNumber)
				fmt.Printf("   Power:        %s\n", s.PowerState)
				fmt.Printf("   Health:       %s (%s)\n", s.Status.Health, s.Status.State)
				fmt.Println()
			}
			return nil
		})
	},
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Firmware inventory and update operations",
}

var firmwareListCmd = &cobra.Command{
	Use:   "list",
	Short: "List firmware inventory members",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			entries, err := client.Firmware().Inventory(ctx)
			if err != nil {
				return fmt.Errorf("failed to list firmware: %w", err)
			}

			if outputFormat == "json" {
				return printJSON(entries)
			}

			fmt.Printf("Found %d firmware entr(ies):\n\n", len(entries))
			for i, e := range entries {
				fmt.Printf("%d. %s  %s\n", i+1, e.ID, e.ODataID)
			}
			return nil
		})
	},
}

var firmwareInfoCmd = &cobra.Command{
	Use:   "info <id-or-path>",
	Short: "Show one firmware inventory entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			details, err := client.Firmware().Info(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch firmware entry: %w", err)
			}
			return printJSON(details)
		})
	},
}

var firmwareUpdateCmd = &cobra.Command{
	Use:   "update <image-file>",
	Short: "Upload a firmware image and run the update workflow",
	Long: `Upload a firmware image and run the full update workflow.

The workflow uploads the image, waits for the BMC to create the uploaded
placeholder entry, triggers the update action for the given target, and
polls the update task to a terminal state. The target is a logical name
resolved through the endpoint map (or a literal Redfish resource path).`,
	Example: `  # Update the BIOS target
  redfishctl firmware update fw.bin --host 10.0.0.9 --username ADMIN --target ActiveBIOSTarget

  # Keep the BMC configuration across the update, allow 30 minutes
  redfishctl firmware update fw.bin --host 10.0.0.9 --username ADMIN \
      --target ActiveBMCTarget --preserve-config --task-timeout 1800`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			fw := client.Firmware()

			if cmd.Flags().Changed("preserve-config") {
				if err := fw.PresetSaveConfig(ctx, updateTarget, preserveConfig); err != nil {
					return fmt.Errorf("failed to set preserve-config: %w", err)
				}
			}

			opts := redfish.UpdateOptions{}
			if taskTimeoutSec > 0 {
				opts.Task.Timeout = time.Duration(taskTimeoutSec) * time.Second
			}

			fmt.Printf("Updating %s from %s...\n", updateTarget, args[0])
			task, err := fw.UploadAndUpdate(ctx, args[0], updateTarget, opts)
			if err != nil {
				return fmt.Errorf("update workflow failed: %w", err)
			}

			if outputFormat == "json" {
				return printJSON(task)
			}

			fmt.Printf("Task finished: state=%s status=%s\n", task.State, task.Status)
			if task.State != redfish.TaskStateCompleted {
				return fmt.Errorf("update ended in state %s", task.State)
			}
			return nil
		})
	},
}

var firmwareDeleteUploadCmd = &cobra.Command{
	Use:   "delete-upload",
	Short: "Delete the uploaded placeholder entry from the inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			if err := client.Firmware().DeleteUploaded(ctx, redfish.PollOptions{}); err != nil {
				return fmt.Errorf("failed to delete uploaded firmware: %w", err)
			}
			fmt.Println("Uploaded firmware entry deleted.")
			return nil
		})
	},
}

var powerCycleCmd = &cobra.Command{
	Use:   "power-cycle",
	Short: "Force a power cycle of a system",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *redfish.Client) error {
			if err := client.Firmware().PowerCycle(ctx, systemID); err != nil {
				return fmt.Errorf("power cycle failed: %w", err)
			}
			fmt.Printf("Power cycle issued for system %s.\n", systemID)
			return nil
		})
	},
}

func init() {
	firmwareUpdateCmd.Flags().StringVar(&updateTarget, "target", "", "Logical update target name (required)")
	firmwareUpdateCmd.Flags().BoolVar(&preserveConfig, "preserve-config", false, "Preserve the target's configuration across the update")
	firmwareUpdateCmd.Flags().IntVar(&taskTimeoutSec, "task-timeout", 0, "Task polling deadline in seconds (default 900)")
	_ = firmwareUpdateCmd.MarkFlagRequired("target")

	powerCycleCmd.Flags().StringVar(&systemID, "system", "1", "System identifier")
}
