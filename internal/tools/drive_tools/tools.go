package drive_tools

import (
	"context"
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/google"
	"github.com/drivemcp/drivemcp/internal/server"
)

// getDriveClient retrieves or creates a drive client for the specified account
func getDriveClient(ctx context.Context, account string, sc *server.ServerContext) (*drive.Client, error) {
	client := sc.DriveClientForAccount(account)
	if client == nil {
		// Check if token exists before trying to create client
		if !drive.HasTokenForAccount(account) {
			errorMsg := google.GetAuthenticationErrorMessage(account)
			return nil, fmt.Errorf("%s", errorMsg)
		}

		var err error
		client, err = drive.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Drive client for account %s: %w", account, err)
		}
		sc.SetDriveClientForAccount(account, client)
	}
	return client, nil
}

// RegisterDriveTools registers all Google Drive tools with the MCP server
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerSearchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register search tools: %w", err)
	}

	if err := registerContentTools(s, sc); err != nil {
		return fmt.Errorf("failed to register content tools: %w", err)
	}

	if err := registerFileTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register file tools: %w", err)
	}

	if err := registerShareTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register share tools: %w", err)
	}

	if err := registerPermissionTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register permission tools: %w", err)
	}

	return nil
}

// argString returns a string argument, or def when absent or empty
func argString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// argBool returns a boolean argument, or def when absent
func argBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// argInt returns a numeric argument, or def when absent or non-positive
func argInt(args map[string]interface{}, key string, def int64) int64 {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int64(v)
	}
	return def
}

// formatItemLine renders one file or folder as a single list line. The size
// segment only appears when the API reported a size for the item.
func formatItemLine(f *drive.FileInfo) string {
	size := ""
	if f.HasSize {
		size = fmt.Sprintf(", Size: %d", f.Size)
	}

	modified := "N/A"
	if !f.ModifiedTime.IsZero() {
		modified = f.ModifiedTime.Format(time.RFC3339)
	}

	link := f.WebViewLink
	if link == "" {
		link = "#"
	}

	return fmt.Sprintf("- Name: %q (ID: %s, Type: %s%s, Modified: %s) Link: %s",
		f.Name, f.ID, f.MimeType, size, modified, link)
}

// linkOrNA renders a link field that may be absent.
func linkOrNA(link string) string {
	if link == "" {
		return "N/A"
	}
	return link
}
