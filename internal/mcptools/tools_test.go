package mcptools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/redfishworks/redfishmcp/internal/redfish"
)

// The tool handlers build clients from host and port only, so the fake BMC
// must be a TLS server; certificate verification is off by default, the same
// as against a real BMC's self-signed certificate.

const (
	sessionsPath  = "/redfish/v1/SessionService/Sessions"
	systemsPath   = "/redfish/v1/Systems"
	inventoryPath = "/redfish/v1/UpdateService/FirmwareInventory"
)

func newFakeBMC(t *testing.T) (*httptest.Server, LoginInput) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(sessionsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Auth-Token", "token-abc")
		w.Header().Set("Location", sessionsPath+"/1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"Id":"1"}`))
	})
	mux.HandleFunc(sessionsPath+"/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(systemsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Members":[{"@odata.id":"/redfish/v1/Systems/1"}]}`))
	})
	mux.HandleFunc(systemsPath+"/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Id":"1","Name":"Node","Manufacturer":"Acme","PowerState":"On","Status":{"Health":"OK","State":"Enabled"}}`))
	})
	mux.HandleFunc(inventoryPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Members":[{"@odata.id":"` + inventoryPath + `/BMC","Id":"BMC"},{"@odata.id":"` + inventoryPath + `/BIOS","Id":"BIOS"}]}`))
	})

	server := httptest.NewTLSServer(mux)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing server port: %v", err)
	}

	in := LoginInput{
		Host:     u.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "secret",
	}
	return server, in
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(nil)
	t.Cleanup(func() { s.Registry().CloseAll(context.Background()) })
	return s
}

func TestLoginTool(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, out, err := s.handleLogin(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("handleLogin returned error: %v", err)
	}
	if out.ConnectionID == "" {
		t.Fatal("empty connection handle")
	}
	if s.Registry().Len() != 1 {
		t.Errorf("registry holds %d connections, want 1", s.Registry().Len())
	}
}

func TestLoginToolDegradesOnFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(u.Port())
	s := newTestServer(t)

	// Login failure yields an empty handle, never a tool error
	_, out, err := s.handleLogin(context.Background(), nil, LoginInput{
		Host: u.Hostname(), Port: port, Username: "admin", Password: "wrong",
	})
	if err != nil {
		t.Fatalf("handleLogin returned error: %v", err)
	}
	if out.ConnectionID != "" {
		t.Errorf("handle = %q, want empty", out.ConnectionID)
	}
	if s.Registry().Len() != 0 {
		t.Errorf("registry holds %d connections, want 0", s.Registry().Len())
	}
}

func TestLogoutTool(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, login, _ := s.handleLogin(context.Background(), nil, in)
	_, out, err := s.handleLogout(context.Background(), nil, HandleInput{ConnectionID: login.ConnectionID})
	if err != nil {
		t.Fatalf("handleLogout returned error: %v", err)
	}
	if !out.Success {
		t.Error("Success = false for a live handle")
	}

	_, out, _ = s.handleLogout(context.Background(), nil, HandleInput{ConnectionID: login.ConnectionID})
	if out.Success {
		t.Error("Success = true for a released handle")
	}
}

func TestMachineInfoTool(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, login, _ := s.handleLogin(context.Background(), nil, in)
	_, out, err := s.handleMachineInfo(context.Background(), nil, HandleInput{ConnectionID: login.ConnectionID})
	if err != nil {
		t.Fatalf("handleMachineInfo returned error: %v", err)
	}
	if len(out.Machines) != 1 {
		t.Fatalf("got %d machines, want 1", len(out.Machines))
	}
	m := out.Machines[0]
	if m.Name != "Node" || m.PowerState != "On" || m.Status.Health != "OK" {
		t.Errorf("machine = %+v", m)
	}
}

func TestMachineInfoToolUnknownHandle(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleMachineInfo(context.Background(), nil, HandleInput{ConnectionID: "no-such-handle"})
	if err != nil {
		t.Fatalf("handleMachineInfo returned error: %v", err)
	}
	if out.Machines == nil {
		t.Error("Machines is nil, want an empty list")
	}
	if len(out.Machines) != 0 {
		t.Errorf("got %d machines for an unknown handle", len(out.Machines))
	}
}

func TestFirmwareInventoryTool(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, login, _ := s.handleLogin(context.Background(), nil, in)
	_, out, err := s.handleFirmwareInventory(context.Background(), nil, HandleInput{ConnectionID: login.ConnectionID})
	if err != nil {
		t.Fatalf("handleFirmwareInventory returned error: %v", err)
	}
	if len(out.Firmware) != 2 {
		t.Fatalf("got %d entries, want 2", len(out.Firmware))
	}
	if out.Firmware[0].ID != "BMC" || out.Firmware[1].ID != "BIOS" {
		t.Errorf("entries = %+v", out.Firmware)
	}
}

func TestUpdateToolUnknownHandle(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleUploadAndUpdate(context.Background(), nil, UpdateInput{
		ConnectionID: "no-such-handle",
		FilePath:     "/tmp/fw.bin",
		Target:       "ActiveBMCTarget",
	})
	if err != nil {
		t.Fatalf("handleUploadAndUpdate returned error: %v", err)
	}
	if out.Failure == "" {
		t.Error("Failure not populated for an unknown handle")
	}
	if out.TaskState != "" {
		t.Errorf("TaskState = %q, want empty alongside Failure", out.TaskState)
	}
}

func TestUpdateToolReportsWorkflowFailure(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, login, _ := s.handleLogin(context.Background(), nil, in)

	// The image file does not exist, so the workflow fails before any
	// firmware traffic; the tool reports the category instead of raising.
	_, out, err := s.handleUploadAndUpdate(context.Background(), nil, UpdateInput{
		ConnectionID: login.ConnectionID,
		FilePath:     filepath.Join(t.TempDir(), "missing.bin"),
		Target:       "ActiveBMCTarget",
	})
	if err != nil {
		t.Fatalf("handleUploadAndUpdate returned error: %v", err)
	}
	if out.Failure == "" {
		t.Fatal("Failure not populated")
	}
}

func TestDeleteToolUnknownHandle(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleDeleteUploaded(context.Background(), nil, HandleInput{ConnectionID: "no-such-handle"})
	if err != nil {
		t.Fatalf("handleDeleteUploaded returned error: %v", err)
	}
	if out.Success || out.Failure == "" {
		t.Errorf("out = %+v, want failure for an unknown handle", out)
	}
}

func TestLoginAndInfoTool(t *testing.T) {
	_, in := newFakeBMC(t)
	s := newTestServer(t)

	_, out, err := s.handleLoginAndInfo(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("handleLoginAndInfo returned error: %v", err)
	}
	if out.ConnectionID == "" {
		t.Error("empty connection handle")
	}
	if len(out.Machines) != 1 {
		t.Errorf("got %d machines, want 1", len(out.Machines))
	}
	if !out.LoggedOut {
		t.Error("LoggedOut = false")
	}
	// The convenience tool leaves no connection behind
	if s.Registry().Len() != 0 {
		t.Errorf("registry holds %d connections, want 0", s.Registry().Len())
	}
}

func TestFailureTextCategory(t *testing.T) {
	err := redfish.NewTimeoutError("task did not finish within 15m0s")
	if got := failureText(err); !strings.Contains(got, "Timeout") {
		t.Errorf("failureText = %q, want the category prefix", got)
	}
}
