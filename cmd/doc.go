// Package cmd implements the command-line interface for drivemcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Authorize Google Drive access for an account
//   - version: Display version information
package cmd
