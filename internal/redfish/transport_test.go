package redfish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransportDo(t *testing.T) {
	var gotMethod, gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Auth-Token")
		w.Header().Set("ETag", "W/\"12345\"")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Name":"BMC"}`))
	}))
	defer server.Close()

	tr := NewTransport(server.URL, false, 5*time.Second)
	env, err := tr.Do(context.Background(), http.MethodGet, "/redfish/v1", map[string]string{"X-Auth-Token": "tok"}, nil, "")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if gotMethod != http.MethodGet || gotPath != "/redfish/v1" {
		t.Errorf("server saw %s %s", gotMethod, gotPath)
	}
	if gotToken != "tok" {
		t.Errorf("token header = %q, want tok", gotToken)
	}
	if env.StatusCode != http.StatusOK {
		t.Errorf("status = %d", env.StatusCode)
	}
	if env.Header("ETag") != "W/\"12345\"" {
		t.Errorf("ETag = %q", env.Header("ETag"))
	}

	var body struct {
		Name string `json:"Name"`
	}
	if err := env.JSON(&body); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if body.Name != "BMC" {
		t.Errorf("Name = %q", body.Name)
	}
}

func TestTransportNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // port now refuses connections

	tr := NewTransport(server.URL, false, time.Second)
	_, err := tr.Do(context.Background(), http.MethodGet, "/redfish/v1", nil, nil, "")
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if !IsTransportError(err) {
		t.Errorf("expected transport error, got %T: %v", err, err)
	}
}

func TestEnvelopeJSONErrors(t *testing.T) {
	empty := &Envelope{}
	var v map[string]any
	if err := empty.JSON(&v); err == nil {
		t.Error("expected error for empty body")
	}

	garbage := &Envelope{Body: []byte("<html>not json</html>")}
	err := garbage.JSON(&v)
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	if typ, ok := errType(err); !ok || typ != ErrTypeParse {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestEnvelopeSuccess(t *testing.T) {
	for _, code := range []int{200, 201, 202, 204} {
		if !(&Envelope{StatusCode: code}).Success() {
			t.Errorf("status %d should be success", code)
		}
	}
	for _, code := range []int{301, 400, 401, 500} {
		if (&Envelope{StatusCode: code}).Success() {
			t.Errorf("status %d should not be success", code)
		}
	}
}
