package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/attachments"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
	"github.com/drivemcp/drivemcp/internal/logging"
	"github.com/drivemcp/drivemcp/internal/server"
	"github.com/drivemcp/drivemcp/internal/tools/common"
	"github.com/drivemcp/drivemcp/internal/tools/drive_tools"
	"github.com/drivemcp/drivemcp/internal/tools/google_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// AttachmentConfig holds configuration for the attachment store that serves
// downloaded file content over expiring HTTP URLs.
type AttachmentConfig struct {
	// Dir is the directory for saved files. Empty means a fresh temp dir.
	Dir string

	// TTL is how long saved files stay downloadable.
	TTL time.Duration
}

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		transport string
		httpAddr  string
		yolo      bool
		stateless bool
		baseURL   string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
		// Attachment store configuration
		attachmentDir string
		attachmentTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Drive
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (file creation, metadata
  updates, sharing, ownership transfer).

HTTP Transport:
  Base URL (required for deployed instances):
    --base-url https://your-domain.com OR MCP_BASE_URL env var
    Auto-detected for localhost (development only)

  Each HTTP session is mapped to a Google account by its Authorization
  header, so multiple accounts can share one server instance. Downloaded
  files are served under /attachments/ with a limited lifetime unless
  --stateless disables file storage entirely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			attachmentConfig := AttachmentConfig{
				Dir: attachmentDir,
				TTL: attachmentTTL,
			}
			return runServe(transport, debugMode, httpAddr, yolo, stateless, baseURL, metricsConfig, attachmentConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (file creation, updates, sharing, ownership transfer). Default is read-only mode.")
	cmd.Flags().BoolVar(&stateless, "stateless", false, "Disable attachment storage. Downloads return inline content only. Use for deployments without durable scratch space.")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for attachment download links (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	// Attachment store flags
	cmd.Flags().StringVar(&attachmentDir, "attachment-dir", "", "Directory for attachment storage. Defaults to a temporary directory. Can also use ATTACHMENT_DIR env var.")
	cmd.Flags().DurationVar(&attachmentTTL, "attachment-ttl", attachments.DefaultTTL, "How long downloaded files stay available via their URL.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, yolo, stateless bool, baseURL string, metricsConfig MetricsConfig, attachmentConfig AttachmentConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setupLogging(debugMode, transport)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}
	if attachmentConfig.Dir == "" {
		attachmentConfig.Dir = os.Getenv("ATTACHMENT_DIR")
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != server.TransportStdio {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != server.TransportStdio && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx, transport)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	serverContext.SetStateless(stateless)

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != server.TransportStdio {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("drivemcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !yolo

	// Log the mode for visibility (only for non-stdio transports)
	if transport != server.TransportStdio {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch transport {
	case server.TransportStdio:
		return runStdioServer(mcpSrv)
	case server.TransportStreamableHTTP:
		fmt.Printf("Starting drivemcp MCP server with %s transport...\n", transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, httpAddr, baseURL, metricsConfig, attachmentConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// setupLogging configures the default slog logger. Logs go to stderr so the
// stdio transport keeps stdout free for the MCP protocol.
func setupLogging(debugMode bool, transport string) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(slog.String(logging.KeyTransport, transport))
	slog.SetDefault(logger)
	log.SetOutput(os.Stderr)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, instrProvider *instrumentation.Provider, addr, baseURL string, metricsConfig MetricsConfig, attachmentConfig AttachmentConfig) error {
	// Determine base URL from flag, environment variable, or auto-detection
	configured := baseURL != "" || os.Getenv("MCP_BASE_URL") != ""
	baseURL = resolveBaseURL(baseURL, addr)
	if configured {
		log.Printf("Using configured base URL: %s", baseURL)
	} else {
		log.Printf("No base URL configured, using auto-detected: %s", baseURL)
		log.Printf("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	}

	// Attachment store for download URLs. Skipped in stateless mode, where
	// download tools fall back to inline base64 content.
	var store *attachments.Store
	if !serverContext.Stateless() {
		var err error
		store, err = attachments.NewStore(attachmentConfig.Dir, baseURL, attachmentConfig.TTL, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to create attachment store: %w", err)
		}
		serverContext.SetAttachments(store)
		store.StartJanitor(ctx.Done())
	}

	// Map each session's Authorization header to its account so tool
	// handlers see the right Google credentials.
	sessionManager := server.NewSessionIDManager()
	defer sessionManager.Stop()

	contextFunc := func(reqCtx context.Context, r *http.Request) context.Context {
		sessionID, err := sessionManager.ResolveSessionID(r)
		if err != nil {
			return reqCtx
		}
		account := sessionManager.GetAccountForSession(sessionID)
		return common.ContextWithAccount(reqCtx, account)
	}

	healthChecker := server.NewHealthChecker(serverContext)

	httpConfig := server.HTTPServerConfig{
		Addr:          addr,
		ContextFunc:   contextFunc,
		Attachments:   store,
		HealthChecker: healthChecker,
	}
	if instrProvider != nil && instrProvider.Enabled() {
		httpConfig.Metrics = instrProvider.Metrics()
	}

	httpServer, err := server.NewHTTPServer(mcpSrv, httpConfig)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if store != nil {
		fmt.Printf("  Attachment downloads: /attachments/ (TTL: %s)\n", store.TTL())
	}
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	if err := google_tools.RegisterGoogleTools(mcpSrv, ctx); err != nil {
		return fmt.Errorf("failed to register Google auth tools: %w", err)
	}
	if err := drive_tools.RegisterDriveTools(mcpSrv, ctx, readOnly); err != nil {
		return fmt.Errorf("failed to register Drive tools: %w", err)
	}
	return nil
}

// resolveBaseURL picks the externally reachable URL for attachment links.
// Flag value wins, then MCP_BASE_URL, then localhost auto-detection from the
// listen address.
func resolveBaseURL(baseURL, addr string) string {
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s", addr)
		if strings.HasPrefix(addr, ":") {
			baseURL = fmt.Sprintf("http://localhost%s", addr)
		}
	}
	return strings.TrimRight(baseURL, "/")
}
