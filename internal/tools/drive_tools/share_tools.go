package drive_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
	"github.com/drivemcp/drivemcp/internal/server"
	"github.com/drivemcp/drivemcp/internal/tools/batch"
	"github.com/drivemcp/drivemcp/internal/tools/common"
)

// driveImageURL is the public direct-view URL for a Drive file, usable as an
// image source once link sharing is enabled.
func driveImageURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", fileID)
}

// permissionPointers adapts a metadata permission slice for HasPublicLink.
func permissionPointers(perms []drive.Permission) []*drive.Permission {
	ptrs := make([]*drive.Permission, len(perms))
	for i := range perms {
		ptrs[i] = &perms[i]
	}
	return ptrs
}

// registerShareTools registers the sharing inspection and mutation tools
func registerShareTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Get permissions tool
	getPermissionsTool := mcp.NewTool("drive_get_permissions",
		mcp.WithDescription("Get detailed metadata for a Google Drive file including its sharing permissions, links, and whether it is publicly accessible via 'Anyone with the link'."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to check permissions for"),
		),
	)

	s.AddTool(getPermissionsTool, common.InstrumentedToolHandlerWithOperation("drive_get_permissions", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			info, err := client.GetFile(ctx, ref.ID,
				"id, name, mimeType, size, modifiedTime, owners, "+
					"permissions(id, type, role, emailAddress, domain, displayName, expirationTime), "+
					"webViewLink, webContentLink, shared, sharingUser")
			if err != nil {
				return mcp.NewToolResultText(fmt.Sprintf("Error getting file permissions: %v", err)), nil
			}

			return mcp.NewToolResultText(formatPermissionsReport(ref.ID, info)), nil
		}))

	// Check public access tool
	checkPublicAccessTool := mcp.NewTool("drive_check_public_access",
		mcp.WithDescription("Search for a file by name and check whether public link sharing is enabled for it."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("The name of the file to check"),
		),
	)

	s.AddTool(checkPublicAccessTool, common.InstrumentedToolHandlerWithOperation("drive_check_public_access", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileName, ok := args["file_name"].(string)
			if !ok || fileName == "" {
				return mcp.NewToolResultError("file_name is required"), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			files, err := client.List(ctx, drive.ListQuery{
				Query:            fmt.Sprintf("name = '%s'", drive.EscapeQueryTerm(fileName)),
				PageSize:         10,
				IncludeAllDrives: true,
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to search for file: %v", err)), nil
			}

			if len(files) == 0 {
				return mcp.NewToolResultText(fmt.Sprintf("No file found with name '%s'", fileName)), nil
			}

			var lines []string
			if len(files) > 1 {
				lines = append(lines, fmt.Sprintf("Found %d files with name '%s':", len(files), fileName))
				for _, f := range files {
					lines = append(lines, fmt.Sprintf("  - %s (ID: %s)", f.Name, f.ID))
				}
				lines = append(lines, "", "Checking the first file...", "")
			}

			ref, err := client.Resolve(ctx, files[0].ID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			info, err := client.GetFile(ctx, ref.ID,
				"id, name, mimeType, permissions(id, type, role, emailAddress, domain, expirationTime), "+
					"webViewLink, webContentLink, shared")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get file permissions: %v", err)), nil
			}

			lines = append(lines,
				fmt.Sprintf("File: %s", info.Name),
				fmt.Sprintf("ID: %s", ref.ID),
				fmt.Sprintf("Type: %s", info.MimeType),
				fmt.Sprintf("Shared: %t", info.Shared),
				"",
			)

			if public, _ := drive.HasPublicLink(permissionPointers(info.Permissions)); public {
				lines = append(lines,
					"✅ PUBLIC ACCESS ENABLED - This file can be inserted into Google Docs",
					fmt.Sprintf("Use with insert_doc_image_url: %s", driveImageURL(ref.ID)),
				)
			} else {
				lines = append(lines,
					"❌ NO PUBLIC ACCESS - Cannot insert into Google Docs",
					"Fix: Drive → Share → 'Anyone with the link' → 'Viewer'",
				)
			}

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Get shareable link tool
	getShareableLinkTool := mcp.NewTool("drive_get_shareable_link",
		mcp.WithDescription("Get the shareable link for a Google Drive file or folder along with its current sharing status and permissions."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder to get a shareable link for"),
		),
	)

	s.AddTool(getShareableLinkTool, common.InstrumentedToolHandlerWithOperation("drive_get_shareable_link", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			info, err := client.GetFile(ctx, ref.ID,
				"id, name, mimeType, webViewLink, webContentLink, shared, "+
					"permissions(id, type, role, emailAddress, domain, expirationTime)")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get file: %v", err)), nil
			}

			name := info.Name
			if name == "" {
				name = "Unknown"
			}
			mimeType := info.MimeType
			if mimeType == "" {
				mimeType = "Unknown"
			}

			lines := []string{
				fmt.Sprintf("File: %s", name),
				fmt.Sprintf("ID: %s", ref.ID),
				fmt.Sprintf("Type: %s", mimeType),
				fmt.Sprintf("Shared: %t", info.Shared),
				"",
				"Links:",
				fmt.Sprintf("  View: %s", linkOrNA(info.WebViewLink)),
			}

			if info.WebContentLink != "" {
				lines = append(lines, fmt.Sprintf("  Download: %s", info.WebContentLink))
			}

			if len(info.Permissions) > 0 {
				lines = append(lines, "", "Current permissions:")
				for i := range info.Permissions {
					lines = append(lines, "  - "+drive.FormatPermission(&info.Permissions[i]))
				}
			}

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Write tools below
	if readOnly {
		return nil
	}

	// Share file tool
	shareFileTool := mcp.NewTool("drive_share_file",
		mcp.WithDescription("Share a Google Drive file or folder with a user, group, domain, or anyone with the link. Sharing a folder makes all files inside inherit the permission."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder to share"),
		),
		mcp.WithString("share_with",
			mcp.Description("Email address (for user/group), domain name (for domain), or omitted for 'anyone'"),
		),
		mcp.WithString("role",
			mcp.Description("Permission role: 'reader', 'commenter', or 'writer' (default: 'reader')"),
		),
		mcp.WithString("share_type",
			mcp.Description("Type of sharing: 'user', 'group', 'domain', or 'anyone' (default: 'user')"),
		),
		mcp.WithBoolean("send_notification",
			mcp.Description("Whether to send a notification email (default: true). Only applies to user and group shares."),
		),
		mcp.WithString("email_message",
			mcp.Description("Custom message for the notification email"),
		),
		mcp.WithString("expiration_time",
			mcp.Description("Expiration time in RFC 3339 format (e.g. \"2025-01-15T00:00:00Z\"). The permission is revoked automatically after this time."),
		),
		mcp.WithBoolean("allow_file_discovery",
			mcp.Description("For 'domain' or 'anyone' shares: whether the file can be found through search. Default leaves the API default."),
		),
	)

	s.AddTool(shareFileTool, common.InstrumentedToolHandlerWithOperation("drive_share_file", instrumentation.OperationShare, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}

			opts := &drive.ShareOptions{
				Type:                  argString(args, "share_type", drive.TypeUser),
				Role:                  argString(args, "role", drive.RoleReader),
				ShareWith:             argString(args, "share_with", ""),
				SendNotificationEmail: argBool(args, "send_notification", true),
				EmailMessage:          argString(args, "email_message", ""),
				ExpirationTime:        argString(args, "expiration_time", ""),
			}
			if v, ok := args["allow_file_discovery"].(bool); ok {
				opts.AllowFileDiscovery = &v
			}

			if err := opts.Validate(); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID, "webViewLink")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			perm, err := client.CreatePermission(ctx, ref.ID, opts)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to share file: %v", err)), nil
			}

			lines := []string{
				fmt.Sprintf("Successfully shared '%s'", ref.Name()),
				"",
				"Permission created:",
				"  - " + drive.FormatPermission(perm),
				"",
				fmt.Sprintf("View link: %s", linkOrNA(ref.Info.WebViewLink)),
			}

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Batch share tool
	batchShareTool := mcp.NewTool("drive_batch_share",
		mcp.WithDescription("Share a Google Drive file or folder with multiple users, groups, or domains in a single operation. Recipients are processed in order; each outcome is reported independently."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder to share"),
		),
		mcp.WithArray("recipients",
			mcp.Required(),
			mcp.Description("List of recipient objects. Each has: email (for user/group shares) or domain (for domain shares), role ('reader', 'commenter', or 'writer', default 'reader'), share_type ('user', 'group', or 'domain', default 'user'), and optional expiration_time (RFC 3339). A list of bare email addresses is accepted as shorthand for reader shares."),
		),
		mcp.WithBoolean("send_notification",
			mcp.Description("Whether to send notification emails (default: true)"),
		),
		mcp.WithString("email_message",
			mcp.Description("Custom message for the notification emails"),
		),
	)

	s.AddTool(batchShareTool, common.InstrumentedToolHandlerWithOperation("drive_batch_share", instrumentation.OperationShare, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}

			recipients, err := parseRecipients(args["recipients"])
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			sendNotification := argBool(args, "send_notification", true)
			emailMessage := argString(args, "email_message", "")

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID, "webViewLink")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			results := make([]batch.Result, 0, len(recipients))
			for _, r := range recipients {
				results = append(results, shareRecipient(ctx, client, ref.ID, r, sendNotification, emailMessage))
			}

			lines := []string{
				fmt.Sprintf("Batch share results for '%s'", ref.Name()),
				"",
				batch.SummaryLine(results),
				"",
				"Results:",
			}
			lines = append(lines, batch.TextLines(results)...)
			lines = append(lines, "", fmt.Sprintf("View link: %s", linkOrNA(ref.Info.WebViewLink)))

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	return nil
}

// parseRecipients decodes the recipients argument. Some MCP clients serialize
// array arguments as a JSON string, so both forms are accepted. A list of
// bare email addresses is shorthand for user shares with the default role.
func parseRecipients(raw interface{}) ([]drive.ShareRecipient, error) {
	if raw == nil {
		return nil, fmt.Errorf("recipients list cannot be empty")
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid recipients: %w", err)
		}
	}

	var recipients []drive.ShareRecipient
	if err := json.Unmarshal(data, &recipients); err != nil {
		emails, emailErr := batch.ParseStringOrArray(raw, "recipients")
		if emailErr != nil {
			return nil, fmt.Errorf("invalid recipients: %w", err)
		}
		recipients = make([]drive.ShareRecipient, 0, len(emails))
		for _, email := range emails {
			if !strings.Contains(email, "@") || strings.ContainsAny(email, "{}[]") {
				return nil, fmt.Errorf("invalid recipients: %q is not an email address", email)
			}
			recipients = append(recipients, drive.ShareRecipient{Email: email})
		}
		return recipients, nil
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("recipients list cannot be empty")
	}
	return recipients, nil
}

// shareRecipient creates one permission of a batch share and records the
// outcome. Validation failures and API errors are per-recipient results,
// never an abort of the whole batch.
func shareRecipient(ctx context.Context, client *drive.Client, fileID string, r drive.ShareRecipient, sendNotification bool, emailMessage string) batch.Result {
	if r.Type == "" {
		r.Type = drive.TypeUser
	}
	if r.Role == "" {
		r.Role = drive.RoleReader
	}

	if r.Type == drive.TypeDomain && r.Domain == "" {
		return batch.NewErrorResult("", fmt.Errorf("Skipped: missing domain for domain share"))
	}
	if r.Type != drive.TypeDomain && r.Email == "" {
		return batch.NewErrorResult("", fmt.Errorf("Skipped: missing email address"))
	}

	identifier := r.Identifier()

	opts := &drive.ShareOptions{
		Type:                  r.Type,
		Role:                  r.Role,
		ShareWith:             identifier,
		SendNotificationEmail: sendNotification,
		EmailMessage:          emailMessage,
		ExpirationTime:        r.ExpirationTime,
	}
	if err := opts.Validate(); err != nil {
		return batch.NewErrorResult(identifier, err)
	}

	perm, err := client.CreatePermission(ctx, fileID, opts)
	if err != nil {
		return batch.NewErrorResult(identifier, err)
	}
	return batch.NewSuccessResult(identifier, drive.FormatPermission(perm))
}

// formatPermissionsReport renders the full sharing report for a file.
func formatPermissionsReport(fileID string, info *drive.FileInfo) string {
	name := info.Name
	if name == "" {
		name = "Unknown"
	}
	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = "Unknown"
	}

	size := "N/A"
	if info.HasSize {
		size = fmt.Sprintf("%d", info.Size)
	}
	modified := "N/A"
	if !info.ModifiedTime.IsZero() {
		modified = info.ModifiedTime.Format(time.RFC3339)
	}

	lines := []string{
		fmt.Sprintf("File: %s", name),
		fmt.Sprintf("ID: %s", fileID),
		fmt.Sprintf("Type: %s", mimeType),
		fmt.Sprintf("Size: %s bytes", size),
		fmt.Sprintf("Modified: %s", modified),
		"",
		"Sharing Status:",
		fmt.Sprintf("  Shared: %t", info.Shared),
	}

	if info.SharingUser != nil {
		display := info.SharingUser.DisplayName
		if display == "" {
			display = "Unknown"
		}
		email := info.SharingUser.EmailAddress
		if email == "" {
			email = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("  Shared by: %s (%s)", display, email))
	}

	if len(info.Permissions) > 0 {
		lines = append(lines, fmt.Sprintf("  Number of permissions: %d", len(info.Permissions)))
		lines = append(lines, "  Permissions:")
		for i := range info.Permissions {
			lines = append(lines, "    - "+drive.FormatPermission(&info.Permissions[i]))
		}
	} else {
		lines = append(lines, "  No additional permissions (private file)")
	}

	lines = append(lines,
		"",
		"URLs:",
		fmt.Sprintf("  View Link: %s", linkOrNA(info.WebViewLink)),
	)
	if info.WebContentLink != "" {
		lines = append(lines, fmt.Sprintf("  Direct Download Link: %s", info.WebContentLink))
	}

	if public, _ := drive.HasPublicLink(permissionPointers(info.Permissions)); public {
		lines = append(lines,
			"",
			"✅ This file is shared with 'Anyone with the link' - it can be inserted into Google Docs",
		)
	} else {
		lines = append(lines,
			"",
			"❌ This file is NOT shared with 'Anyone with the link' - it cannot be inserted into Google Docs",
			"   To fix: Right-click the file in Google Drive → Share → Anyone with the link → Viewer",
		)
	}

	return strings.Join(lines, "\n")
}
