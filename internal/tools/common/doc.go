// Package common holds the glue shared by the tool packages: resolving
// which Google account a call runs as (explicit argument, session
// context, or the default), and the instrumented handler wrapper that
// records timing, metrics, and audit events around each tool invocation.
package common
