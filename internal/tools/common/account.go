package common

import (
	"context"
)

type accountContextKey struct{}

// ContextWithAccount returns a context carrying the account resolved by the
// transport layer (for HTTP transport, the session manager maps Bearer
// tokens to accounts before the tool handler runs).
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the account set by the transport layer, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey{}).(string)
	return account, ok
}

// GetAccountFromArgs extracts the account name from request arguments and context.
// For HTTP transport, the session-resolved account takes precedence.
// Otherwise defaults to "default" or the explicitly provided account name.
//
// Priority order:
//  1. Account resolved by the transport layer (set per session)
//  2. Explicit "account" argument in request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if account, ok := AccountFromContext(ctx); ok && account != "" {
		return account
	}

	// Fall back to explicit account argument or "default"
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
