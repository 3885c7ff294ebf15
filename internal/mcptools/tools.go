package mcptools

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
	"github.com/redfishworks/redfishmcp/internal/redfish"
)

// Tool results degrade instead of raising: a failed login yields an empty
// connection ID, a bad handle yields an empty collection, and a failed
// update yields a populated failure field. Automated callers branch on
// absence without exception handling; tool-protocol errors are reserved
// for transport-level breakage.

// LoginInput are the connection parameters for one BMC
type LoginInput struct {
	Host      string `json:"host" jsonschema:"BMC host address or IP"`
	Port      int    `json:"port,omitempty" jsonschema:"HTTPS port, default 443"`
	Username  string `json:"username,omitempty" jsonschema:"BMC username"`
	Password  string `json:"password,omitempty" jsonschema:"BMC password"`
	VerifySSL bool   `json:"verify_ssl,omitempty" jsonschema:"Verify the BMC TLS certificate, default false"`
	Timeout   int    `json:"timeout,omitempty" jsonschema:"Per-request timeout in seconds, default 60"`
	BMCType   string `json:"bmc_type,omitempty" jsonschema:"Vendor key in the endpoint map, default 'default'"`
}

// LoginOutput carries the handle for subsequent calls
type LoginOutput struct {
	ConnectionID string `json:"connection_id" jsonschema:"Opaque connection handle, empty when login failed"`
}

// HandleInput names an existing connection
type HandleInput struct {
	ConnectionID string `json:"connection_id" jsonschema:"Handle returned by redfish_login"`
}

// LogoutOutput reports whether the session was released
type LogoutOutput struct {
	Success bool `json:"success"`
}

// MachineInfoOutput lists condensed system members
type MachineInfoOutput struct {
	Machines []redfish.SystemSummary `json:"machines"`
}

// FirmwareInventoryOutput lists firmware inventory members
type FirmwareInventoryOutput struct {
	Firmware []redfish.FirmwareEntry `json:"firmware"`
}

// UpdateInput names the image and target for one update workflow
type UpdateInput struct {
	ConnectionID string `json:"connection_id" jsonschema:"Handle returned by redfish_login"`
	FilePath     string `json:"file_path" jsonschema:"Local path of the firmware image"`
	Target       string `json:"target" jsonschema:"Logical update target name resolved through the endpoint map"`
}

// UpdateOutput is the terminal result of one update workflow. Exactly one
// of TaskState or Failure is populated.
type UpdateOutput struct {
	TaskState       string `json:"task_state,omitempty" jsonschema:"Terminal task state (Completed, Exception, Cancelled, Failed)"`
	TaskStatus      string `json:"task_status,omitempty"`
	PercentComplete *int   `json:"percent_complete,omitempty"`
	Failure         string `json:"failure,omitempty" jsonschema:"Failure category and message when the workflow did not reach a terminal task state"`
}

// DeleteOutput reports placeholder cleanup
type DeleteOutput struct {
	Success bool   `json:"success"`
	Failure string `json:"failure,omitempty"`
}

// LoginAndInfoOutput is the combined convenience result
type LoginAndInfoOutput struct {
	ConnectionID string                  `json:"connection_id"`
	Machines     []redfish.SystemSummary `json:"machines"`
	LoggedOut    bool                    `json:"logged_out"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "redfish_login",
		Description: "Log in to a BMC over Redfish and return a connection handle for subsequent tool calls. Returns an empty handle when login fails.",
	}, s.handleLogin)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "redfish_logout",
		Description: "Close a BMC session and release its connection handle.",
	}, s.handleLogout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_machine_info",
		Description: "List the systems behind a connection with identity, power and health fields. Returns an empty list for an unknown handle.",
	}, s.handleMachineInfo)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_firmware_inventory",
		Description: "List the firmware inventory members behind a connection. Returns an empty list for an unknown handle.",
	}, s.handleFirmwareInventory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "upload_and_update",
		Description: "Upload a firmware image and run the full update workflow: placeholder detection, update trigger, task polling. Returns the terminal task state or a failure description.",
	}, s.handleUploadAndUpdate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_uploaded_firmware",
		Description: "Locate the most recent uploaded placeholder entry in the firmware inventory and delete it.",
	}, s.handleDeleteUploaded)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "login_and_get_machine_info",
		Description: "Convenience tool: log in, fetch machine info, and log out again in one call.",
	}, s.handleLoginAndInfo)
}

// login builds client options from tool input and registers a connection
func (s *Server) login(ctx context.Context, in LoginInput) (string, error) {
	opts := redfish.Options{
		Host:      in.Host,
		Port:      in.Port,
		Username:  in.Username,
		Password:  in.Password,
		VerifyTLS: in.VerifySSL,
		Vendor:    in.BMCType,
		Endpoints: s.endpoints,
	}
	if in.Timeout > 0 {
		opts.Timeout = time.Duration(in.Timeout) * time.Second
	}
	return s.registry.Login(ctx, opts)
}

func (s *Server) handleLogin(ctx context.Context, req *mcp.CallToolRequest, in LoginInput) (*mcp.CallToolResult, LoginOutput, error) {
	handle, err := s.login(ctx, in)
	if err != nil {
		logging.Warn("tool login failed",
			zap.String("host", in.Host),
			zap.Error(err),
		)
		return nil, LoginOutput{}, nil
	}
	return nil, LoginOutput{ConnectionID: handle}, nil
}

func (s *Server) handleLogout(ctx context.Context, req *mcp.CallToolRequest, in HandleInput) (*mcp.CallToolResult, LogoutOutput, error) {
	ok := s.registry.Logout(ctx, in.ConnectionID)
	return nil, LogoutOutput{Success: ok}, nil
}

func (s *Server) handleMachineInfo(ctx context.Context, req *mcp.CallToolRequest, in HandleInput) (*mcp.CallToolResult, MachineInfoOutput, error) {
	out := MachineInfoOutput{Machines: []redfish.SystemSummary{}}

	client := s.registry.Get(in.ConnectionID)
	if client == nil {
		return nil, out, nil
	}

	summaries, err := client.Systems().Summaries(ctx)
	if err != nil {
		logging.Warn("machine info failed", zap.Error(err))
		return nil, out, nil
	}
	out.Machines = summaries
	return nil, out, nil
}

func (s *Server) handleFirmwareInventory(ctx context.Context, req *mcp.CallToolRequest, in HandleInput) (*mcp.CallToolResult, FirmwareInventoryOutput, error) {
	out := FirmwareInventoryOutput{Firmware: []redfish.FirmwareEntry{}}

	client := s.registry.Get(in.ConnectionID)
	if client == nil {
		return nil, out, nil
	}

	entries, err := client.Firmware().Inventory(ctx)
	if err != nil {
		logging.Warn("firmware inventory failed", zap.Error(err))
		return nil, out, nil
	}
	out.Firmware = entries
	return nil, out, nil
}

func (s *Server) handleUploadAndUpdate(ctx context.Context, req *mcp.CallToolRequest, in UpdateInput) (*mcp.CallToolResult, UpdateOutput, error) {
	client := s.registry.Get(in.ConnectionID)
	if client == nil {
		return nil, UpdateOutput{Failure: "unknown connection handle"}, nil
	}

	task, err := client.Firmware().UploadAndUpdate(ctx, in.FilePath, in.Target, redfish.UpdateOptions{})
	if err != nil {
		return nil, UpdateOutput{Failure: failureText(err)}, nil
	}

	return nil, UpdateOutput{
		TaskState:       string(task.State),
		TaskStatus:      task.Status,
		PercentComplete: task.PercentComplete,
	}, nil
}

func (s *Server) handleDeleteUploaded(ctx context.Context, req *mcp.CallToolRequest, in HandleInput) (*mcp.CallToolResult, DeleteOutput, error) {
	client := s.registry.Get(in.ConnectionID)
	if client == nil {
		return nil, DeleteOutput{Failure: "unknown connection handle"}, nil
	}

	if err := client.Firmware().DeleteUploaded(ctx, redfish.PollOptions{}); err != nil {
		return nil, DeleteOutput{Failure: failureText(err)}, nil
	}
	return nil, DeleteOutput{Success: true}, nil
}

func (s *Server) handleLoginAndInfo(ctx context.Context, req *mcp.CallToolRequest, in LoginInput) (*mcp.CallToolResult, LoginAndInfoOutput, error) {
	out := LoginAndInfoOutput{Machines: []redfish.SystemSummary{}}

	handle, err := s.login(ctx, in)
	if err != nil {
		logging.Warn("tool login failed",
			zap.String("host", in.Host),
			zap.Error(err),
		)
		return nil, out, nil
	}
	out.ConnectionID = handle

	if client := s.registry.Get(handle); client != nil {
		if summaries, err := client.Systems().Summaries(ctx); err == nil {
			out.Machines = summaries
		}
	}

	out.LoggedOut = s.registry.Logout(ctx, handle)
	return nil, out, nil
}

// failureText renders a workflow error as "<category>: <detail>" so a
// caller can branch on the category prefix.
func failureText(err error) string {
	var ce *redfish.ClientError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}
