package redfish

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
)

// Session maintains the Redfish session for one client. It performs login
// and logout against the SessionService, holds the X-Auth-Token, and
// exposes the header set that authenticated requests must carry.
//
// A token is only valid between a successful Login and the next Logout.
// Logout clears the token so it can never be reused for later requests.
type Session struct {
	transport   *Transport
	username    string
	password    string
	sessionPath string
	token       string
	loggedIn    bool
}

// NewSession creates a session for the given transport and credentials
func NewSession(transport *Transport, username, password string) *Session {
	return &Session{
		transport: transport,
		username:  username,
		password:  password,
	}
}

// loginPayload is the SessionService login request body
type loginPayload struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

// Login creates a session at the given SessionService path and captures the
// auth token and session locator from the response headers.
func (s *Session) Login(ctx context.Context, sessionServicePath string) error {
	payload := loginPayload{UserName: s.username, Password: s.password}

	logging.Info("logging in",
		zap.String("user", s.username),
		zap.String("path", sessionServicePath),
	)

	env, err := s.transport.DoJSON(ctx, http.MethodPost, sessionServicePath, baseHeaders(), payload)
	if err != nil {
		return err
	}

	if env.StatusCode != http.StatusOK && env.StatusCode != http.StatusCreated {
		logging.Error("login rejected", zap.Int("status", env.StatusCode))
		return NewAuthError("login rejected by BMC", env.StatusCode, string(env.Body))
	}

	token := env.Header("X-Auth-Token")
	if token == "" {
		return NewAuthError("login response missing X-Auth-Token header", env.StatusCode, string(env.Body))
	}

	s.token = token
	s.sessionPath = env.Header("Location")
	s.loggedIn = true

	logging.Info("session established",
		zap.String("session_path", s.sessionPath),
		zap.Int("token_len", len(token)),
	)
	return nil
}

// Logout deletes the session resource and invalidates the token. Calling
// Logout without an active session is an error.
func (s *Session) Logout(ctx context.Context) error {
	if !s.loggedIn || s.sessionPath == "" {
		logging.Warn("logout without active session")
		return NewAuthError("no active session", 0, "")
	}

	env, err := s.transport.Do(ctx, http.MethodDelete, s.sessionPath, s.AuthHeaders(), nil, "")
	if err != nil {
		return err
	}
	if env.StatusCode >= http.StatusBadRequest {
		logging.Error("logout rejected", zap.Int("status", env.StatusCode))
		return NewAuthError("logout rejected by BMC", env.StatusCode, string(env.Body))
	}

	// Token must never be reused after this point
	s.loggedIn = false
	s.sessionPath = ""
	s.token = ""

	logging.Info("session closed", zap.Int("status", env.StatusCode))
	return nil
}

// LoggedIn reports whether the session currently holds a valid token
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

// SessionPath returns the locator of the active session resource, or ""
func (s *Session) SessionPath() string {
	return s.sessionPath
}

// AuthHeaders returns the header set authenticated requests must carry.
// The map is rebuilt per call so callers can't mutate session state.
func (s *Session) AuthHeaders() map[string]string {
	headers := baseHeaders()
	headers["X-Auth-Token"] = s.token
	return headers
}

// baseHeaders returns the headers sent on every request
func baseHeaders() map[string]string {
	return map[string]string{
		"Accept":           "application/json",
		"Cache-Control":    "no-cache",
		"Connection":       "keep-alive",
		"X-Requested-With": "XMLHttpRequest",
	}
}
