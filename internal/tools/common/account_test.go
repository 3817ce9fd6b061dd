package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAccountFromArgs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no account specified returns default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "account specified returns account",
			args: map[string]interface{}{
				"account": "work",
			},
			expected: "work",
		},
		{
			name: "empty account returns default",
			args: map[string]interface{}{
				"account": "",
			},
			expected: "default",
		},
		{
			name: "account with other params",
			args: map[string]interface{}{
				"account": "personal",
				"other":   "value",
			},
			expected: "personal",
		},
		{
			name:     "nil args returns default",
			args:     nil,
			expected: "default",
		},
		{
			name: "non-string account type returns default",
			args: map[string]interface{}{
				"account": 123,
			},
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(ctx, tt.args))
		})
	}
}

func TestGetAccountFromArgs_WithSessionContext(t *testing.T) {
	ctx := ContextWithAccount(context.Background(), "session-user@example.com")

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "session context takes precedence over default",
			args:     map[string]interface{}{},
			expected: "session-user@example.com",
		},
		{
			name: "session context takes precedence over explicit account",
			args: map[string]interface{}{
				"account": "explicit-account",
			},
			expected: "session-user@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(ctx, tt.args))
		})
	}
}

func TestGetAccountFromArgs_WithEmptySessionAccount(t *testing.T) {
	ctx := ContextWithAccount(context.Background(), "")

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "empty session account falls back to default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "empty session account falls back to explicit account",
			args: map[string]interface{}{
				"account": "fallback-account",
			},
			expected: "fallback-account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(ctx, tt.args))
		})
	}
}

func TestAccountFromContext_Unset(t *testing.T) {
	account, ok := AccountFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "", account)
}
