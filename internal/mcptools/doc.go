// Package mcptools exposes the Redfish client as Model Context Protocol
// tools.
//
// The tool surface mirrors the connection-handle model of the registry: a
// caller logs in once with redfish_login, receives an opaque handle, and
// passes that handle to every subsequent tool. Tools degrade rather than
// raise: a failed login returns an empty handle, an unknown handle returns
// an empty collection, and a failed update workflow returns a structured
// failure description. MCP protocol errors are reserved for transport
// breakage, so automated callers can branch on absence without exception
// handling.
//
// # Tools
//
//   - redfish_login: authenticate against a BMC, returns a connection handle
//   - redfish_logout: close the session behind a handle
//   - get_machine_info: condensed system inventory
//   - get_firmware_inventory: firmware inventory members
//   - upload_and_update: the full firmware update workflow
//   - delete_uploaded_firmware: remove the uploaded placeholder entry
//   - login_and_get_machine_info: login, fetch, logout in one call
//
// # Transports
//
// The server runs over stdio (the standard transport for MCP servers
// launched as a subprocess) or streamable HTTP for network callers. With
// the stdio transport nothing may be written to stdout, which is why
// logging defaults to silent.
package mcptools
