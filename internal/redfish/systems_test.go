package redfish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const systemsCollectionJSON = `{
	"@odata.id": "/redfish/v1/Systems",
	"Members": [
		{"@odata.id": "/redfish/v1/Systems/1"},
		{"@odata.id": "/redfish/v1/Systems/2"}
	],
	"Members@odata.count": 2
}`

const systemMemberJSON = `{
	"@odata.id": "/redfish/v1/Systems/1",
	"Id": "1",
	"Name": "Compute Node",
	"Manufacturer": "Supermicro",
	"Model": "SYS-1029U",
	"SerialNumber": "S424242",
	"UUID": "00000000-0000-0000-0000-3cecef000000",
	"PowerState": "On",
	"Status": {"Health": "OK", "State": "Enabled"}
}`

func TestSystemsMembers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/redfish/v1/Systems", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(systemsCollectionJSON))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	paths, err := c.Systems().Members(context.Background())
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d members, want 2", len(paths))
	}
	if paths[0] != "/redfish/v1/Systems/1" || paths[1] != "/redfish/v1/Systems/2" {
		t.Errorf("paths = %v", paths)
	}
}

func TestSystemsMembersError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	_, err := c.Systems().Members(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !IsTransportError(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestSystemsSummaries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/redfish/v1/Systems", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(systemsCollectionJSON))
	})
	mux.HandleFunc("/redfish/v1/Systems/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(systemMemberJSON))
	})
	// member 2 fails; Summaries must skip it and keep going
	mux.HandleFunc("/redfish/v1/Systems/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	summaries, err := c.Systems().Summaries(context.Background())
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1 (failing member skipped)", len(summaries))
	}

	s := summaries[0]
	if s.ID != "1" || s.Name != "Compute Node" {
		t.Errorf("identity fields: %+v", s)
	}
	if s.Manufacturer != "Supermicro" || s.Model != "SYS-1029U" || s.SerialNumber != "S424242" {
		t.Errorf("hardware fields: %+v", s)
	}
	if s.PowerState != "On" {
		t.Errorf("PowerState = %q", s.PowerState)
	}
	if s.Status.Health != "OK" || s.Status.State != "Enabled" {
		t.Errorf("Status = %+v", s.Status)
	}
}
