package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
	"github.com/drivemcp/drivemcp/internal/server"
	"github.com/drivemcp/drivemcp/internal/tools/common"
)

// registerPermissionTools registers the permission update, removal, and
// ownership transfer tools. All of them mutate sharing state, so none are
// available in read-only mode.
func registerPermissionTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	// Update permission tool
	updatePermissionTool := mcp.NewTool("drive_update_permission",
		mcp.WithDescription("Update an existing permission on a Google Drive file or folder: change its role and/or set an expiration time."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder"),
		),
		mcp.WithString("permission_id",
			mcp.Required(),
			mcp.Description("The ID of the permission to update (from drive_get_permissions)"),
		),
		mcp.WithString("role",
			mcp.Description("New role: 'reader', 'commenter', or 'writer'. When omitted the role is unchanged."),
		),
		mcp.WithString("expiration_time",
			mcp.Description("Expiration time in RFC 3339 format (e.g. \"2025-01-15T00:00:00Z\") to set or update on the permission"),
		),
	)

	s.AddTool(updatePermissionTool, common.InstrumentedToolHandlerWithOperation("drive_update_permission", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}
			permissionID, ok := args["permission_id"].(string)
			if !ok || permissionID == "" {
				return mcp.NewToolResultError("permission_id is required"), nil
			}

			role := argString(args, "role", "")
			expirationTime := argString(args, "expiration_time", "")
			if role == "" && expirationTime == "" {
				return mcp.NewToolResultError("Must provide at least one of: role, expiration_time"), nil
			}

			if role != "" {
				if err := drive.ValidateShareRole(role); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}
			if err := drive.ValidateExpirationTime(expirationTime); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			// The API requires a role in the update body, so fetch the
			// current one when only the expiration changes.
			if role == "" {
				role, err = client.GetPermissionRole(ctx, ref.ID, permissionID)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}

			perm, err := client.UpdatePermission(ctx, ref.ID, permissionID, role, expirationTime)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update permission: %v", err)), nil
			}

			lines := []string{
				fmt.Sprintf("Successfully updated permission on '%s'", ref.Name()),
				"",
				"Updated permission:",
				"  - " + drive.FormatPermission(perm),
			}
			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Remove permission tool
	removePermissionTool := mcp.NewTool("drive_remove_permission",
		mcp.WithDescription("Remove a permission from a Google Drive file or folder, revoking the grantee's access."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder"),
		),
		mcp.WithString("permission_id",
			mcp.Required(),
			mcp.Description("The ID of the permission to remove (from drive_get_permissions)"),
		),
	)

	s.AddTool(removePermissionTool, common.InstrumentedToolHandlerWithOperation("drive_remove_permission", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}
			permissionID, ok := args["permission_id"].(string)
			if !ok || permissionID == "" {
				return mcp.NewToolResultError("permission_id is required"), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.DeletePermission(ctx, ref.ID, permissionID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to remove permission: %v", err)), nil
			}

			lines := []string{
				fmt.Sprintf("Successfully removed permission from '%s'", ref.Name()),
				"",
				fmt.Sprintf("Permission ID '%s' has been revoked.", permissionID),
			}
			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Transfer ownership tool
	transferOwnershipTool := mcp.NewTool("drive_transfer_ownership",
		mcp.WithDescription("Transfer ownership of a Google Drive file or folder to another user. This is irreversible; the current owner becomes an editor. Only works within the same Google Workspace domain or between personal accounts."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file or folder to transfer"),
		),
		mcp.WithString("new_owner_email",
			mcp.Required(),
			mcp.Description("Email address of the new owner"),
		),
		mcp.WithBoolean("move_to_new_owners_root",
			mcp.Description("If true, move the file to the new owner's My Drive root (default: false)"),
		),
	)

	s.AddTool(transferOwnershipTool, common.InstrumentedToolHandlerWithOperation("drive_transfer_ownership", instrumentation.OperationTransfer, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileID, ok := args["file_id"].(string)
			if !ok || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}
			newOwnerEmail, ok := args["new_owner_email"].(string)
			if !ok || newOwnerEmail == "" {
				return mcp.NewToolResultError("new_owner_email is required"), nil
			}
			moveToRoot := argBool(args, "move_to_new_owners_root", false)

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ref, err := client.Resolve(ctx, fileID, "owners")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			var previousOwners []string
			for _, owner := range ref.Info.Owners {
				if owner.EmailAddress != "" {
					previousOwners = append(previousOwners, owner.EmailAddress)
				}
			}
			previous := strings.Join(previousOwners, ", ")
			if previous == "" {
				previous = "Unknown"
			}

			if err := client.TransferOwnership(ctx, ref.ID, newOwnerEmail, moveToRoot); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to transfer ownership: %v", err)), nil
			}

			lines := []string{
				fmt.Sprintf("Successfully transferred ownership of '%s'", ref.Name()),
				"",
				fmt.Sprintf("New owner: %s", newOwnerEmail),
				fmt.Sprintf("Previous owner(s): %s", previous),
			}
			if moveToRoot {
				lines = append(lines, fmt.Sprintf("File moved to %s's My Drive root.", newOwnerEmail))
			}
			lines = append(lines, "", "Note: Previous owner now has editor access.")

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	return nil
}
