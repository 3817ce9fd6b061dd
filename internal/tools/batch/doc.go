// Package batch carries the per-item result plumbing for tools that act
// on several targets in one call, such as sharing a file with a list of
// recipients. Items are processed strictly in order and every outcome is
// recorded on its own, so one bad item never aborts the rest.
//
// It also parses arguments that accept a single string, an array, or a
// JSON-encoded array, which MCP clients disagree on.
package batch
