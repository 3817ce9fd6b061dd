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

// registerFileTools registers the file creation and update tools
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	// Create file tool
	createFileTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create a new file in Google Drive, including in shared drives. Accepts either direct content or a fileUrl (file://, http://, https://) to fetch the content from."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("The name for the new file"),
		),
		mcp.WithString("content",
			mcp.Description("Content to write to the file. Ignored when fileUrl is also provided."),
		),
		mcp.WithString("folder_id",
			mcp.Description("ID of the parent folder (default: 'root'). For shared drives this must be a folder ID within the drive."),
		),
		mcp.WithString("mime_type",
			mcp.Description("MIME type of the file (default: 'text/plain'). For URL sources the response Content-Type takes precedence unless it is application/octet-stream."),
		),
		mcp.WithString("fileUrl",
			mcp.Description("URL to fetch the file content from. Supports file://, http://, and https://. Takes precedence over content."),
		),
	)

	s.AddTool(createFileTool, common.InstrumentedToolHandlerWithOperation("drive_create_file", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			fileName, ok := args["file_name"].(string)
			if !ok || fileName == "" {
				return mcp.NewToolResultError("file_name is required"), nil
			}

			src := drive.UploadSource{
				Content: argString(args, "content", ""),
				FileURL: argString(args, "fileUrl", ""),
			}
			if src.Content == "" && src.FileURL == "" {
				return mcp.NewToolResultError("You must provide either 'content' or 'fileUrl'."), nil
			}

			folderID := argString(args, "folder_id", drive.RootFolderID)
			mimeType := argString(args, "mime_type", "text/plain")

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resolvedFolderID, err := client.ResolveFolder(ctx, folderID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			created, transferred, err := client.CreateFile(ctx, fileName, resolvedFolderID, mimeType, src, sc.TransferEnv())
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
			}
			if m := sc.Metrics(); m != nil {
				m.RecordTransferBytes(ctx, instrumentation.DirectionUpload, transferred)
			}

			link := created.WebViewLink
			if link == "" {
				link = "No link available"
			}

			return mcp.NewToolResultText(fmt.Sprintf(
				"Successfully created file '%s' (ID: %s) in folder '%s' for %s. Link: %s",
				created.Name, created.ID, folderID, account, link)), nil
		}))

	// Update file tool
	updateFileTool := mcp.NewTool("drive_update_file",
		mcp.WithDescription("Update metadata and properties of a Google Drive file: rename, describe, star, trash or restore, move between folders, adjust sharing-related flags, and set custom properties. Only the fields supplied are changed."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the file"),
		),
		mcp.WithString("description",
			mcp.Description("New description for the file"),
		),
		mcp.WithString("mime_type",
			mcp.Description("New MIME type (note: changing type may require a content upload)"),
		),
		mcp.WithString("add_parents",
			mcp.Description("Comma-separated folder IDs to add as parents. Shortcuts to folders are resolved."),
		),
		mcp.WithString("remove_parents",
			mcp.Description("Comma-separated folder IDs to remove from parents"),
		),
		mcp.WithBoolean("starred",
			mcp.Description("Star or unstar the file"),
		),
		mcp.WithBoolean("trashed",
			mcp.Description("Move the file to trash or restore it"),
		),
		mcp.WithBoolean("writers_can_share",
			mcp.Description("Whether writers can share the file"),
		),
		mcp.WithBoolean("copy_requires_writer_permission",
			mcp.Description("Whether copying requires writer permission"),
		),
		mcp.WithObject("properties",
			mcp.Description("Custom key/value properties to set on the file"),
		),
	)

	s.AddTool(updateFileTool, common.InstrumentedToolHandlerWithOperation("drive_update_file", instrumentation.OperationUpdate, sc,
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

			ref, err := client.Resolve(ctx, fileID,
				"description, parents, starred, trashed, webViewLink, writersCanShare, copyRequiresWriterPermission, properties")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			opts := updateOptionsFromArgs(args)
			plan := drive.PlanUpdate(ref.Info, opts)

			if plan.AddParents, err = client.ResolveParentList(ctx, opts.AddParents); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if plan.RemoveParents, err = client.ResolveParentList(ctx, opts.RemoveParents); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			updated, err := client.UpdateFile(ctx, ref.ID, plan)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update file: %v", err)), nil
			}

			name := updated.Name
			if name == "" {
				name = ref.Name()
			}

			lines := []string{
				fmt.Sprintf("✅ Successfully updated file: %s", name),
				fmt.Sprintf("   File ID: %s", ref.ID),
			}

			if len(plan.Changes) > 0 {
				lines = append(lines, "", "Changes applied:")
				for _, c := range plan.Changes {
					lines = append(lines, "   • "+c)
				}
			} else {
				lines = append(lines, "   (No changes were made)")
			}

			viewLink := updated.WebViewLink
			if viewLink == "" {
				viewLink = "#"
			}
			lines = append(lines, "", fmt.Sprintf("View file: %s", viewLink))

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	return nil
}

// updateOptionsFromArgs collects the metadata overrides the caller actually
// supplied. Absent keys stay nil so the update patch stays sparse.
func updateOptionsFromArgs(args map[string]interface{}) *drive.UpdateOptions {
	opts := &drive.UpdateOptions{}

	if v, ok := args["name"].(string); ok {
		opts.Name = &v
	}
	if v, ok := args["description"].(string); ok {
		opts.Description = &v
	}
	if v, ok := args["mime_type"].(string); ok {
		opts.MimeType = &v
	}
	if v, ok := args["starred"].(bool); ok {
		opts.Starred = &v
	}
	if v, ok := args["trashed"].(bool); ok {
		opts.Trashed = &v
	}
	if v, ok := args["writers_can_share"].(bool); ok {
		opts.WritersCanShare = &v
	}
	if v, ok := args["copy_requires_writer_permission"].(bool); ok {
		opts.CopyRequiresWriterPermission = &v
	}
	opts.AddParents = argString(args, "add_parents", "")
	opts.RemoveParents = argString(args, "remove_parents", "")
	if raw, ok := args["properties"].(map[string]interface{}); ok {
		props := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				props[k] = s
			} else {
				props[k] = fmt.Sprintf("%v", v)
			}
		}
		opts.Properties = props
	}

	return opts
}
