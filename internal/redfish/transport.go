package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
)

// Envelope is the typed response returned by the transport. The body is
// fully read before the envelope is handed to a caller, so callers never
// deal with streaming or connection lifetimes.
type Envelope struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON decodes the body into v
func (e *Envelope) JSON(v any) error {
	if len(e.Body) == 0 {
		return NewParseError("empty response body", nil)
	}
	if err := json.Unmarshal(e.Body, v); err != nil {
		return NewParseError("failed to decode response body", err)
	}
	return nil
}

// Header returns the first value for a response header (case-insensitive)
func (e *Envelope) Header(name string) string {
	return e.Headers.Get(name)
}

// Success reports whether the status code indicates the request was
// accepted (200, 201, 202 or 204)
func (e *Envelope) Success() bool {
	switch e.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	default:
		return false
	}
}

// Transport performs raw HTTP calls against one BMC. It carries no retry
// logic; retrying is a policy of the polling loops above it.
type Transport struct {
	// BaseURL is the scheme://host:port prefix for all requests
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewTransport creates a transport for the given base URL. BMCs commonly
// serve self-signed certificates, so certificate verification is only
// enabled when verifyTLS is set.
func NewTransport(baseURL string, verifyTLS bool, timeout time.Duration) *Transport {
	httpClient := &http.Client{Timeout: timeout}
	if !verifyTLS {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Transport{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
	}
}

// FullURL joins a resource path onto the base URL
func (t *Transport) FullURL(path string) string {
	return t.BaseURL + path
}

// Do performs one HTTP request and returns the typed response envelope.
// A network-level failure is returned as a transport ClientError; a
// response with any status code is returned as an envelope, status
// interpretation is the caller's job.
func (t *Transport) Do(ctx context.Context, method, path string, headers map[string]string, body []byte, contentType string) (*Envelope, error) {
	url := t.FullURL(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, NewTransportError("failed to create request", err)
	}

	headerKeys := make([]string, 0, len(headers))
	for k, v := range headers {
		req.Header.Set(k, v)
		headerKeys = append(headerKeys, k)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logging.LogHTTPRequest(method, url, headerKeys, len(body))

	start := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		logging.Error("HTTP request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, NewTransportError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}

	logging.LogHTTPResponse(method, url, resp.StatusCode, time.Since(start).Milliseconds(), respBody)

	return &Envelope{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// DoJSON marshals v as the JSON request body and performs the request
func (t *Transport) DoJSON(ctx context.Context, method, path string, headers map[string]string, v any) (*Envelope, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, NewParseError("failed to encode request body", err)
	}
	return t.Do(ctx, method, path, headers, body, "application/json")
}
