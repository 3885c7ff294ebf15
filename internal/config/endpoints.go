package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appName       = "redfishmcp"
	endpointsFile = "endpoints.yaml"

	// DefaultVendor is the vendor key used when a BMC type is not specified.
	DefaultVendor = "default"
)

// Endpoints maps a BMC vendor key to a set of named service paths. Vendors
// encode the same Redfish services under slightly different URIs; the map
// lets one client codebase talk to all of them. Logical update targets
// (e.g. "ActiveBIOSTarget") resolve through the same map.
type Endpoints struct {
	Version int                          `yaml:"version"`
	Vendors map[string]map[string]string `yaml:"vendors"`
}

// NewEndpoints returns an endpoint map with no vendor overrides. Lookups
// against it fall through to the caller's default paths.
func NewEndpoints() *Endpoints {
	return &Endpoints{
		Version: 1,
		Vendors: make(map[string]map[string]string),
	}
}

// DefaultPath returns the conventional location of the endpoints file,
// following XDG conventions ($XDG_CONFIG_HOME/redfishmcp/endpoints.yaml or
// $HOME/.config/redfishmcp/endpoints.yaml).
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, endpointsFile), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName, endpointsFile), nil
}

// Load reads an endpoint map from the given YAML file. An empty path means
// the conventional location. A missing file is not an error: it yields an
// empty map so every lookup falls back to the built-in default paths.
func Load(path string) (*Endpoints, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewEndpoints(), nil
		}
		return nil, fmt.Errorf("failed to read endpoints file: %w", err)
	}

	var eps Endpoints
	if err := yaml.Unmarshal(data, &eps); err != nil {
		return nil, fmt.Errorf("failed to parse endpoints file: %w", err)
	}

	if eps.Version != 1 {
		return nil, fmt.Errorf("unsupported endpoints version: %d (expected 1)", eps.Version)
	}

	if eps.Vendors == nil {
		eps.Vendors = make(map[string]map[string]string)
	}

	return &eps, nil
}

// Lookup returns the configured path for a vendor and service name.
// The bool result reports whether an entry exists.
func (e *Endpoints) Lookup(vendor, service string) (string, bool) {
	if e == nil || e.Vendors == nil {
		return "", false
	}
	services, ok := e.Vendors[vendor]
	if !ok {
		return "", false
	}
	path, ok := services[service]
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// Resolve returns the configured path for a vendor and service name, or
// fallback when no entry exists.
func (e *Endpoints) Resolve(vendor, service, fallback string) string {
	if path, ok := e.Lookup(vendor, service); ok {
		return path
	}
	return fallback
}

// SetVendor replaces the service map for a vendor. Used by tests and by
// callers that assemble endpoint maps programmatically.
func (e *Endpoints) SetVendor(vendor string, services map[string]string) {
	if e.Vendors == nil {
		e.Vendors = make(map[string]map[string]string)
	}
	e.Vendors[vendor] = services
}
