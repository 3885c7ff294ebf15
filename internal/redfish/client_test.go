package redfish

import (
	"testing"
	"time"

	"github.com/redfishworks/redfishmcp/internal/config"
)

// newTestClient builds a client pointed at a local test server. No login is
// performed; handlers that need auth state install it themselves.
func newTestClient(t *testing.T, baseURL string, eps *config.Endpoints) *Client {
	t.Helper()
	return NewClient(Options{
		Host:      "bmc.test",
		Username:  "admin",
		Password:  "secret",
		Endpoints: eps,
		BaseURL:   baseURL,
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{Host: "10.0.0.9"})

	if c.opts.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", c.opts.Port, DefaultPort)
	}
	if c.opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.opts.Timeout, DefaultTimeout)
	}
	if c.opts.Vendor != config.DefaultVendor {
		t.Errorf("Vendor = %q, want %q", c.opts.Vendor, config.DefaultVendor)
	}
	if c.transport.BaseURL != "https://10.0.0.9:443" {
		t.Errorf("BaseURL = %q", c.transport.BaseURL)
	}
	if c.LoggedIn() {
		t.Error("fresh client reports LoggedIn")
	}
}

func TestNewClientExplicitOptions(t *testing.T) {
	c := NewClient(Options{Host: "bmc.example", Port: 8443, Timeout: 10 * time.Second})
	if c.transport.BaseURL != "https://bmc.example:8443" {
		t.Errorf("BaseURL = %q", c.transport.BaseURL)
	}
	if c.transport.HTTPClient.Timeout != 10*time.Second {
		t.Errorf("HTTP timeout = %v", c.transport.HTTPClient.Timeout)
	}
}

func TestServicePathResolution(t *testing.T) {
	eps := config.NewEndpoints()
	eps.SetVendor("vendorX", map[string]string{
		"Systems": "/redfish/v1/Chassis/Systems",
	})

	c := NewClient(Options{Host: "h", Vendor: "vendorX", Endpoints: eps})
	if got := c.ServicePath("Systems", defaultSystemsPath); got != "/redfish/v1/Chassis/Systems" {
		t.Errorf("ServicePath = %q", got)
	}
	if got := c.ServicePath("UpdateService", defaultUpdateServicePath); got != defaultUpdateServicePath {
		t.Errorf("ServicePath fallback = %q", got)
	}

	// Nil endpoint map means built-in defaults everywhere
	c = NewClient(Options{Host: "h"})
	if got := c.ServicePath("Systems", defaultSystemsPath); got != defaultSystemsPath {
		t.Errorf("ServicePath with nil map = %q", got)
	}
}

func TestTargetPath(t *testing.T) {
	eps := config.NewEndpoints()
	eps.SetVendor(config.DefaultVendor, map[string]string{
		"ActiveBIOSTarget": "/redfish/v1/UpdateService/FirmwareInventory/BIOS",
	})
	c := NewClient(Options{Host: "h", Endpoints: eps})

	path, ok := c.TargetPath("ActiveBIOSTarget")
	if !ok || path != "/redfish/v1/UpdateService/FirmwareInventory/BIOS" {
		t.Errorf("TargetPath = %q, %v", path, ok)
	}

	// A literal Redfish path passes through untouched
	path, ok = c.TargetPath("/redfish/v1/UpdateService/FirmwareInventory/BMC")
	if !ok || path != "/redfish/v1/UpdateService/FirmwareInventory/BMC" {
		t.Errorf("literal TargetPath = %q, %v", path, ok)
	}

	// Unknown logical names have no default
	if _, ok := c.TargetPath("NoSuchTarget"); ok {
		t.Error("unknown target resolved")
	}
}
