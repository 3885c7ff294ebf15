package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
	"github.com/redfishworks/redfishmcp/internal/redfish"
)

// Registry maps opaque connection handles to authenticated Redfish
// clients. Handles are UUID strings minted at login. Insert and remove are
// atomic under one mutex, so a client cannot be logged out by one caller
// while another is removing it.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*redfish.Client
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		clients: make(map[string]*redfish.Client),
	}
}

// Login builds a client from the given options, authenticates it, and
// returns the new connection handle. On login failure no handle is
// allocated and nothing is stored.
func (r *Registry) Login(ctx context.Context, opts redfish.Options) (string, error) {
	client := redfish.NewClient(opts)
	if err := client.Login(ctx); err != nil {
		return "", err
	}

	handle := uuid.NewString()

	r.mu.Lock()
	r.clients[handle] = client
	r.mu.Unlock()

	logging.Info("connection registered",
		zap.String("handle", handle),
		zap.String("host", opts.Host),
	)
	return handle, nil
}

// Get returns the client for a handle, or nil when the handle is unknown
func (r *Registry) Get(handle string) *redfish.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients[handle]
}

// Logout removes the client for a handle and closes its session. Returns
// false when the handle is unknown. The client is removed from the map
// before the session is closed, so no other caller can obtain it while the
// logout is in flight.
func (r *Registry) Logout(ctx context.Context, handle string) bool {
	r.mu.Lock()
	client, ok := r.clients[handle]
	if ok {
		delete(r.clients, handle)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	if err := client.Logout(ctx); err != nil {
		logging.Warn("logout failed",
			zap.String("handle", handle),
			zap.Error(err),
		)
		return false
	}

	logging.Info("connection released", zap.String("handle", handle))
	return true
}

// Len returns the number of active connections
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// CloseAll logs out every connection, used at server shutdown
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	handles := make([]string, 0, len(r.clients))
	for h := range r.clients {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		r.Logout(ctx, h)
	}
}
