package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/config"
	"github.com/redfishworks/redfishmcp/internal/logging"
	"github.com/redfishworks/redfishmcp/internal/registry"
	"github.com/redfishworks/redfishmcp/internal/version"
)

const serverName = "redfish-mcp"

// shutdownTimeout bounds HTTP server drain and connection cleanup
const shutdownTimeout = 10 * time.Second

// Server exposes the Redfish operations as MCP tools. Tool state is one
// connection registry; everything else a tool needs travels in its input.
type Server struct {
	registry  *registry.Registry
	endpoints *config.Endpoints
	mcpServer *mcp.Server
}

// NewServer builds the MCP server and registers all tools. The endpoint
// map is injected once here and shared by every connection the tools
// create.
func NewServer(endpoints *config.Endpoints) *Server {
	s := &Server{
		registry:  registry.New(),
		endpoints: endpoints,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

// Registry exposes the connection registry, used by tests
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// RunStdio serves MCP over stdin/stdout until the context is cancelled.
// This is the standard transport for MCP servers launched by a client.
func (s *Server) RunStdio(ctx context.Context) error {
	logging.Info("serving MCP over stdio")
	defer s.registry.CloseAll(context.Background())
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// ListenAndServe serves MCP over streamable HTTP on addr until the context
// is cancelled or the server stops.
func (s *Server) ListenAndServe(ctx context.Context, addr, path string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := &http.Server{Addr: addr, Handler: mux}

	logging.Info("serving MCP over HTTP",
		zap.String("addr", addr),
		zap.String("path", path),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.registry.CloseAll(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		s.registry.CloseAll(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
