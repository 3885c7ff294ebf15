// Package logging provides structured logging for the redfishmcp binaries.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the Redfish client and the MCP tool layer. Logging
// is silent by default: the MCP server speaks JSON-RPC over stdio, so nothing
// may be written to stdout, and nothing is written to stderr either unless
// the operator asks for it.
//
// # Log Levels
//
// Verbosity is controlled through the REDFISH_LOG_LEVEL environment variable
// or an explicit Initialize call:
//   - Debug: response body previews, poll attempts, header merging
//   - Info: requests, responses, session lifecycle, workflow stages
//   - Warn: tolerated poll failures, logout without session
//   - Error: failed stages, transport errors
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("session established",
//	    zap.String("host", "10.0.0.9"),
//	    zap.String("session_path", "/redfish/v1/SessionService/Sessions/12"),
//	)
//
// # HTTP Logging
//
// The transport logs every request and response through LogHTTPRequest and
// LogHTTPResponse. Header values are never logged so X-Auth-Token stays out
// of log files.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
