// Package drive_tools provides MCP tools for working with Google Drive:
// searching and listing items, reading and downloading content, creating
// and updating files, and managing sharing permissions.
//
// Tools that modify Drive state (create, update, share, permission changes,
// ownership transfer) are only registered when the server is not running in
// read-only mode. Every tool accepts an optional "account" argument so a
// single server can serve multiple Google accounts.
package drive_tools
