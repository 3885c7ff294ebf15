// Package config loads the per-vendor Redfish endpoint map.
//
// Different BMC vendors expose the same logical services under different
// URIs. The endpoint map keys a vendor identifier (the "bmc type" passed at
// login) to named service paths, with built-in Redfish default paths as the
// fallback for anything not configured.
//
// # File Format
//
// The map is stored as YAML at $XDG_CONFIG_HOME/redfishmcp/endpoints.yaml
// (or ~/.config/redfishmcp/endpoints.yaml):
//
//	version: 1
//	vendors:
//	  default:
//	    SessionService: /redfish/v1/SessionService/Sessions
//	    FirmwareInventory: /redfish/v1/UpdateService/FirmwareInventory
//	    StartUpdate: /redfish/v1/UpdateService/Actions/UpdateService.StartUpdate
//	  vendorx:
//	    SessionService: /redfish/v1/Sessions
//	    ActiveBIOSTarget: /redfish/v1/UpdateService/FirmwareInventory/ActiveBIOS
//
// Logical firmware update targets (such as ActiveBIOSTarget above) resolve
// through the same map, so an operator can name a target symbolically and
// keep the concrete resource path per vendor.
//
// # No Global State
//
// Load returns an explicit *Endpoints value that callers inject into the
// Redfish client. There is no process-wide endpoint registry; tests build
// their own maps with NewEndpoints and SetVendor.
package config
