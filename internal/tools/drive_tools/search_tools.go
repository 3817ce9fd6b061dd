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

// registerSearchTools registers the search and listing tools
func registerSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Search files tool
	searchFilesTool := mcp.NewTool("drive_search_files",
		mcp.WithDescription("Search for files and folders in Google Drive, including shared drives. Free text queries are matched against file content; Google Drive query language expressions (e.g. \"name contains 'report'\") are passed through as-is."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query. Supports Google Drive search operators."),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of files to return (default: 10)"),
		),
		mcp.WithString("drive_id",
			mcp.Description("ID of a shared drive to search within. If omitted, behavior depends on corpora and include_items_from_all_drives."),
		),
		mcp.WithBoolean("include_items_from_all_drives",
			mcp.Description("Whether items from shared drives are included in results (default: true). Applies when drive_id is not set."),
		),
		mcp.WithString("corpora",
			mcp.Description("Bodies of items to query: 'user', 'domain', 'drive', or 'allDrives'. Defaults to 'drive' when drive_id is set. Prefer 'user' or 'drive' over 'allDrives' for efficiency."),
		),
	)

	s.AddTool(searchFilesTool, common.InstrumentedToolHandlerWithOperation("drive_search_files", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			query, ok := args["query"].(string)
			if !ok || query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			lq := drive.BuildListParams(
				drive.BuildQuery(query),
				argInt(args, "page_size", 10),
				argString(args, "drive_id", ""),
				argBool(args, "include_items_from_all_drives", true),
				argString(args, "corpora", ""),
			)

			files, err := client.List(ctx, lq)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to search files: %v", err)), nil
			}

			if len(files) == 0 {
				return mcp.NewToolResultText(fmt.Sprintf("No files found for '%s'.", query)), nil
			}

			lines := []string{fmt.Sprintf("Found %d files for %s matching '%s':", len(files), account, query)}
			for _, f := range files {
				lines = append(lines, formatItemLine(f))
			}
			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// List items tool
	listItemsTool := mcp.NewTool("drive_list_items",
		mcp.WithDescription("List files and folders in a Google Drive folder, including shared drives. The folder ID may be a shortcut to a folder; shortcuts are resolved to their target."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("folder_id",
			mcp.Description("ID of the folder to list (default: 'root'). For a shared drive this is the drive ID (to list its root) or a folder ID within it."),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of items to return (default: 100)"),
		),
		mcp.WithString("drive_id",
			mcp.Description("ID of a shared drive. If set, the listing is scoped to this drive."),
		),
		mcp.WithBoolean("include_items_from_all_drives",
			mcp.Description("Whether items from all accessible shared drives are included when drive_id is not set (default: true)"),
		),
		mcp.WithString("corpora",
			mcp.Description("Bodies of items to query: 'user', 'drive', or 'allDrives'. Defaults to 'drive' when drive_id is set."),
		),
	)

	s.AddTool(listItemsTool, common.InstrumentedToolHandlerWithOperation("drive_list_items", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			folderID := argString(args, "folder_id", drive.RootFolderID)

			client, err := getDriveClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resolvedFolderID, err := client.ResolveFolder(ctx, folderID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			lq := drive.BuildListParams(
				fmt.Sprintf("'%s' in parents and trashed=false", resolvedFolderID),
				argInt(args, "page_size", 100),
				argString(args, "drive_id", ""),
				argBool(args, "include_items_from_all_drives", true),
				argString(args, "corpora", ""),
			)

			files, err := client.List(ctx, lq)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list items: %v", err)), nil
			}

			if len(files) == 0 {
				return mcp.NewToolResultText(fmt.Sprintf("No items found in folder '%s'.", folderID)), nil
			}

			lines := []string{fmt.Sprintf("Found %d items in folder '%s' for %s:", len(files), folderID, account)}
			for _, f := range files {
				lines = append(lines, formatItemLine(f))
			}
			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	return nil
}
