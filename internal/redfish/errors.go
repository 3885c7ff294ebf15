package redfish

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// Error types for Redfish client operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeInvalidInput indicates a bad local precondition (missing or empty file)
	ErrTypeInvalidInput ErrorType = iota
	// ErrTypeTransport indicates a network or HTTP-layer failure
	ErrTypeTransport
	// ErrTypeAuth indicates a session login failure
	ErrTypeAuth
	// ErrTypeUpload indicates the BMC rejected a firmware image upload
	ErrTypeUpload
	// ErrTypeUpdateTrigger indicates the start-update request was rejected
	ErrTypeUpdateTrigger
	// ErrTypeTimeout indicates a polling loop exceeded its deadline
	ErrTypeTimeout
	// ErrTypeDelete indicates a placeholder entry could not be deleted
	ErrTypeDelete
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidInput:
		return "Invalid Input"
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeAuth:
		return "Authentication Failed"
	case ErrTypeUpload:
		return "Upload Failed"
	case ErrTypeUpdateTrigger:
		return "Update Trigger Failed"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeDelete:
		return "Delete Failed"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ClientError represents a failure of one workflow stage. Transport-layer
// failures are converted into a ClientError at the stage boundary with the
// original status and body attached for diagnostics; raw I/O errors never
// cross a stage boundary.
type ClientError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Body       string    // Response body snippet (if applicable)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ClientError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewInvalidInputError creates an error for a failed local precondition
func NewInvalidInputError(message string) *ClientError {
	return &ClientError{Type: ErrTypeInvalidInput, Message: message}
}

// NewTransportError creates a transport-level error, refining the message
// for common network failure modes
func NewTransportError(message string, err error) *ClientError {
	switch {
	case os.IsTimeout(err):
		message = message + ": request timed out"
	case isConnectionRefused(err):
		message = message + ": connection refused"
	case isDNSError(err):
		message = message + ": DNS resolution failed"
	}
	return &ClientError{Type: ErrTypeTransport, Message: message, Err: err}
}

// NewStatusError creates a transport-level error for an unexpected HTTP status
func NewStatusError(message string, statusCode int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeTransport,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// NewAuthError creates a session login failure
func NewAuthError(message string, statusCode int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// NewUploadError creates a firmware upload failure
func NewUploadError(message string, statusCode int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeUpload,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// NewUpdateTriggerError creates a start-update failure
func NewUpdateTriggerError(message string, statusCode int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeUpdateTrigger,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// NewTimeoutError creates a polling deadline failure
func NewTimeoutError(message string) *ClientError {
	return &ClientError{Type: ErrTypeTimeout, Message: message}
}

// NewDeleteError creates a placeholder deletion failure
func NewDeleteError(message string, statusCode int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeDelete,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// NewParseError creates a malformed-response failure
func NewParseError(message string, err error) *ClientError {
	return &ClientError{Type: ErrTypeParse, Message: message, Err: err}
}

// errType extracts the ClientError type from an error chain
func errType(err error) (ErrorType, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type, true
	}
	return 0, false
}

// IsInvalidInput checks if an error is a failed local precondition
func IsInvalidInput(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeInvalidInput
}

// IsTransportError checks if an error is a network or HTTP-layer failure
func IsTransportError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeTransport
}

// IsAuthError checks if an error is a login failure
func IsAuthError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeAuth
}

// IsUploadError checks if an error is an upload failure
func IsUploadError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeUpload
}

// IsUpdateTriggerError checks if an error is a start-update failure
func IsUpdateTriggerError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeUpdateTrigger
}

// IsTimeout checks if an error is a polling deadline failure
func IsTimeout(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeTimeout
}

// IsDeleteError checks if an error is a placeholder deletion failure
func IsDeleteError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeDelete
}

func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.As(urlErr.Err, &dnsErr)
	}
	return false
}

func truncateBody(body string) string {
	const max = 500
	if len(body) > max {
		return body[:max] + "..."
	}
	return body
}
