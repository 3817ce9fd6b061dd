// Package server provides the MCP server context, session management,
// and auxiliary HTTP endpoints for the drivemcp application.
//
// # Key Components
//
// ServerContext manages Google Drive clients with lazy initialization and
// caching. It supports multiple accounts, each backed by its own OAuth
// token on disk, and carries the deployment descriptor the transfer engine
// consults when deciding how to spool uploads and whether local file
// sources are reachable.
//
// SessionIDManager handles multi-account session tracking for HTTP
// transport. It maps Bearer tokens to accounts, enabling multiple users to
// share a single MCP server instance.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from the main application traffic. HealthChecker provides liveness and
// readiness endpoints for Kubernetes probes.
package server
