package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/attachments"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the address the HTTP server binds to (e.g. ":8080").
	Addr string

	// ContextFunc is applied to every MCP request before dispatch. The
	// transport layer uses it to resolve the session's account from the
	// Authorization header.
	ContextFunc mcpserver.HTTPContextFunc

	// Attachments, when set, is mounted under /attachments/ so saved
	// downloads are reachable over HTTP.
	Attachments *attachments.Store

	// HealthChecker provides the /healthz and /readyz endpoints.
	HealthChecker *HealthChecker

	// Metrics, when set, records request counts and latency per endpoint.
	Metrics *instrumentation.Metrics
}

// HTTPServer serves the MCP protocol over streamable HTTP alongside the
// health and attachment endpoints.
type HTTPServer struct {
	httpServer *http.Server
	addr       string
}

// NewHTTPServer assembles the HTTP mux for the streamable HTTP transport.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("HTTP server address is required")
	}

	streamableOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if config.ContextFunc != nil {
		streamableOpts = append(streamableOpts, mcpserver.WithHTTPContextFunc(config.ContextFunc))
	}
	streamableServer := mcpserver.NewStreamableHTTPServer(mcpSrv, streamableOpts...)

	mux := http.NewServeMux()
	mux.Handle("/mcp", instrumentHandler(config.Metrics, "/mcp", streamableServer))

	if config.HealthChecker != nil {
		config.HealthChecker.RegisterHealthEndpoints(mux)
	}

	if config.Attachments != nil {
		mux.Handle("/attachments/", instrumentHandler(config.Metrics, "/attachments", config.Attachments.Handler()))
	}

	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		addr: config.Addr,
	}, nil
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrumentHandler records request metrics for an endpoint. The path label
// is fixed per handler to keep metric cardinality bounded.
func instrumentHandler(metrics *instrumentation.Metrics, path string, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, path, recorder.status, time.Since(start))
	})
}
