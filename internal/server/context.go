package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/drivemcp/drivemcp/internal/attachments"
	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
	"github.com/drivemcp/drivemcp/internal/logging"
)

// TransportStdio and TransportStreamableHTTP are the supported MCP transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	driveClients map[string]*drive.Client // Maps account name to Drive client
	transport    string
	stateless    bool
	attachments  *attachments.Store
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, transport string) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	driveClients := make(map[string]*drive.Client)

	// Try to create default Drive client, but don't fail if token is missing
	// Clients will be lazily initialized when first needed
	if drive.HasTokenForAccount("default") {
		client, err := drive.NewClient(shutdownCtx)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			slog.Warn("Failed to create Drive client", logging.Account("default"), logging.Err(err))
		} else {
			driveClients["default"] = client
		}
	}

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		driveClients: driveClients,
		transport:    transport,
		shutdown:     false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// DriveClientForAccount returns the Drive client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) DriveClientForAccount(account string) *drive.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.driveClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !drive.HasTokenForAccount(account) {
		return nil
	}

	client, err := drive.NewClientForAccount(sc.ctx, account)
	if err != nil {
		slog.Warn("Failed to create Drive client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.driveClients[account] = client
	return client
}

// DriveClient returns the Drive client for the default account
func (sc *ServerContext) DriveClient() *drive.Client {
	return sc.DriveClientForAccount("default")
}

// SetDriveClientForAccount sets the Drive client for a specific account
func (sc *ServerContext) SetDriveClientForAccount(account string, client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClients[account] = client
}

// SetDriveClient sets the Drive client for the default account
func (sc *ServerContext) SetDriveClient(client *drive.Client) {
	sc.SetDriveClientForAccount("default", client)
}

// CachedAccounts lists the accounts with a constructed Drive client,
// sorted for stable output.
func (sc *ServerContext) CachedAccounts() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	accounts := make([]string, 0, len(sc.driveClients))
	for account := range sc.driveClients {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// Transport returns the MCP transport the server was started with
func (sc *ServerContext) Transport() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.transport
}

// SetStateless marks the server as running without durable scratch storage
func (sc *ServerContext) SetStateless(stateless bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stateless = stateless
}

// Stateless reports whether the server runs without durable scratch storage
func (sc *ServerContext) Stateless() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.stateless
}

// TransferEnv describes the deployment to the transfer engine.
// A server behind an HTTP transport runs away from the caller's
// filesystem, so local file sources cannot be read there.
func (sc *ServerContext) TransferEnv() drive.TransferEnv {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return drive.TransferEnv{
		Stateless:       sc.stateless,
		NetworkIsolated: sc.transport != TransportStdio,
	}
}

// SetAttachments sets the attachment store used for download links
func (sc *ServerContext) SetAttachments(store *attachments.Store) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.attachments = store
}

// Attachments returns the attachment store, or nil if none is configured
func (sc *ServerContext) Attachments() *attachments.Store {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.attachments
}

// SetMetrics sets the metrics recorder
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if instrumentation is not configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// AuditLogger returns the audit logger, or nil if not configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
