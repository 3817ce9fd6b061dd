// Package drive provides a typed client for the Google Drive v3 API:
// query building and search, shortcut-aware item resolution, export
// negotiation for native Google document types, chunked content transfer,
// permission management and sparse metadata updates.
package drive
