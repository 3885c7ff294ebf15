// Package registry tracks authenticated BMC connections by opaque handle.
//
// The MCP tool layer is stateless between calls: a caller logs in once,
// receives a UUID handle, and names that handle on every subsequent tool
// call. The registry owns the client lifetime from login to logout and is
// the only component that holds credentials-bearing state.
//
// Handles are removed from the map before their session is closed, so a
// concurrent caller can never obtain a client whose logout is in flight.
package registry
