package redfish

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redfishworks/redfishmcp/internal/config"
)

const (
	// DefaultPort is the default HTTPS port for BMC connections
	DefaultPort = 443

	// DefaultTimeout is the default per-request HTTP timeout
	DefaultTimeout = 60 * time.Second

	// Default Redfish service paths, used when the endpoint map has no
	// entry for the vendor
	defaultSessionServicePath    = "/redfish/v1/SessionService/Sessions"
	defaultSystemsPath           = "/redfish/v1/Systems"
	defaultFirmwareInventoryPath = "/redfish/v1/UpdateService/FirmwareInventory"
	defaultUpdateServicePath     = "/redfish/v1/UpdateService"
	defaultStartUpdatePath       = "/redfish/v1/UpdateService/Actions/UpdateService.StartUpdate"
)

// Options configures a Client
type Options struct {
	// Host is the BMC address or hostname
	Host string

	// Port is the BMC HTTPS port (default 443)
	Port int

	// Username and Password are the BMC credentials
	Username string
	Password string

	// VerifyTLS enables certificate verification. Off by default because
	// BMCs ship self-signed certificates.
	VerifyTLS bool

	// Timeout is the per-request HTTP timeout (default 60s)
	Timeout time.Duration

	// Vendor selects the endpoint-map vendor key (default "default")
	Vendor string

	// Endpoints is the vendor endpoint map. Nil means built-in defaults
	// for every service.
	Endpoints *config.Endpoints

	// BaseURL overrides the https://host:port URL derived from Host and
	// Port. Used by tests to point the client at a local server.
	BaseURL string
}

// Client talks to one BMC. It aggregates the transport, the session, and
// the resource services, and merges default, auth, and per-call headers on
// every request.
//
// A Client is not safe for concurrent use; the connection registry
// serializes access per handle.
type Client struct {
	opts      Options
	transport *Transport
	session   *Session
	endpoints *config.Endpoints
	vendor    string

	systems  *SystemsService
	firmware *FirmwareService
}

// NewClient creates a client for one BMC. No network traffic happens until
// Login is called.
func NewClient(opts Options) *Client {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Vendor == "" {
		opts.Vendor = config.DefaultVendor
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s:%d", opts.Host, opts.Port)
	}
	transport := NewTransport(baseURL, opts.VerifyTLS, opts.Timeout)

	c := &Client{
		opts:      opts,
		transport: transport,
		session:   NewSession(transport, opts.Username, opts.Password),
		endpoints: opts.Endpoints,
		vendor:    opts.Vendor,
	}
	c.systems = newSystemsService(c)
	c.firmware = newFirmwareService(c)
	return c
}

// Login establishes a Redfish session
func (c *Client) Login(ctx context.Context) error {
	path := c.ServicePath("SessionService", defaultSessionServicePath)
	return c.session.Login(ctx, path)
}

// Logout closes the Redfish session and invalidates the token
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// LoggedIn reports whether the client holds an active session
func (c *Client) LoggedIn() bool {
	return c.session.LoggedIn()
}

// Host returns the BMC host this client talks to
func (c *Client) Host() string {
	return c.opts.Host
}

// ServicePath resolves a logical service name through the endpoint map,
// falling back to the given default path.
func (c *Client) ServicePath(service, fallback string) string {
	return c.endpoints.Resolve(c.vendor, service, fallback)
}

// TargetPath resolves a logical update-target name through the endpoint
// map. Target names have no hardcoded default; a name that is already a
// Redfish path is accepted literally.
func (c *Client) TargetPath(name string) (string, bool) {
	if path, ok := c.endpoints.Lookup(c.vendor, name); ok {
		return path, true
	}
	if len(name) > 0 && name[0] == '/' {
		return name, true
	}
	return "", false
}

// Get performs an authenticated GET
func (c *Client) Get(ctx context.Context, path string) (*Envelope, error) {
	return c.transport.Do(ctx, http.MethodGet, path, c.session.AuthHeaders(), nil, "")
}

// Post performs an authenticated POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, payload any) (*Envelope, error) {
	return c.transport.DoJSON(ctx, http.MethodPost, path, c.session.AuthHeaders(), payload)
}

// PostRaw performs an authenticated POST with a preassembled body, used
// for multipart uploads
func (c *Client) PostRaw(ctx context.Context, path string, body []byte, contentType string) (*Envelope, error) {
	return c.transport.Do(ctx, http.MethodPost, path, c.session.AuthHeaders(), body, contentType)
}

// Patch performs an authenticated PATCH with a JSON body and optional
// extra headers (e.g. If-Match)
func (c *Client) Patch(ctx context.Context, path string, payload any, extra map[string]string) (*Envelope, error) {
	headers := c.session.AuthHeaders()
	for k, v := range extra {
		headers[k] = v
	}
	return c.transport.DoJSON(ctx, http.MethodPatch, path, headers, payload)
}

// Delete performs an authenticated DELETE
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.transport.Do(ctx, http.MethodDelete, path, c.session.AuthHeaders(), nil, "")
}

// Systems returns the Systems resource service
func (c *Client) Systems() *SystemsService {
	return c.systems
}

// Firmware returns the firmware update service
func (c *Client) Firmware() *FirmwareService {
	return c.firmware
}
