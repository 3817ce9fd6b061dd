package drive_tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/instrumentation"
	"github.com/drivemcp/drivemcp/internal/office"
	"github.com/drivemcp/drivemcp/internal/server"
	"github.com/drivemcp/drivemcp/internal/tools/common"
)

// registerContentTools registers the content retrieval tools
func registerContentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get file content tool
	getContentTool := mcp.NewTool("drive_get_content",
		mcp.WithDescription("Get the content of a Google Drive file by ID, including files in shared drives. Native Google Docs/Sheets/Slides are exported as text/CSV; Office files (.docx, .xlsx, .pptx) have their readable text extracted; other files are downloaded and decoded as UTF-8 when possible."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The Drive file ID. Shortcuts are resolved to their target."),
		),
	)

	s.AddTool(getContentTool, common.InstrumentedToolHandlerWithOperation("drive_get_content", instrumentation.OperationDownload, sc,
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

			ref, err := client.Resolve(ctx, fileID, "webViewLink")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			mimeType := ref.MimeType()

			plan := drive.ExportPlan{
				SourceMime: mimeType,
				ExportMime: drive.TextExportMime(mimeType),
				OutputMime: mimeType,
			}
			if plan.NeedsExport() {
				plan.OutputMime = plan.ExportMime
			}

			res, err := client.Download(ctx, ref.ID, plan)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to download file content: %v", err)), nil
			}
			if m := sc.Metrics(); m != nil {
				m.RecordTransferBytes(ctx, instrumentation.DirectionDownload, res.TotalSize)
			}

			body := decodeContent(res.Bytes, mimeType)

			header := fmt.Sprintf("File: %q (ID: %s, Type: %s)\nLink: %s\n\n--- CONTENT ---\n",
				ref.Name(), ref.ID, mimeType, ref.WebViewLink())
			return mcp.NewToolResultText(header + body), nil
		}))

	// Get download URL tool
	getDownloadURLTool := mcp.NewTool("drive_get_download_url",
		mcp.WithDescription("Get a download URL for a Google Drive file. The file is prepared and made available via an HTTP URL for one hour. Native Google files are exported: Docs to PDF (or DOCX), Sheets to XLSX (or CSV), Slides to PDF (or PPTX)."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The Drive file ID to get a download URL for"),
		),
		mcp.WithString("export_format",
			mcp.Description("Optional export format for native Google files: 'docx', 'csv', or 'pptx'. When omitted, a sensible default is used (PDF for Docs/Slides, XLSX for Sheets)."),
		),
	)

	s.AddTool(getDownloadURLTool, common.InstrumentedToolHandlerWithOperation("drive_get_download_url", instrumentation.OperationDownload, sc,
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

			ref, err := client.Resolve(ctx, fileID, "webViewLink")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			plan := drive.PlanExport(ref.MimeType(), argString(args, "export_format", ""), ref.Name())

			res, err := client.Download(ctx, ref.ID, plan)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to download file: %v", err)), nil
			}
			if m := sc.Metrics(); m != nil {
				m.RecordTransferBytes(ctx, instrumentation.DirectionDownload, res.TotalSize)
			}

			sizeKB := float64(res.TotalSize) / 1024

			store := sc.Attachments()
			if sc.Stateless() || store == nil {
				preview := res.Bytes
				if len(preview) > 100 {
					preview = preview[:100]
				}
				lines := []string{
					"File downloaded successfully!",
					fmt.Sprintf("File: %s", ref.Name()),
					fmt.Sprintf("File ID: %s", ref.ID),
					fmt.Sprintf("Size: %.1f KB (%d bytes)", sizeKB, res.TotalSize),
					fmt.Sprintf("MIME Type: %s", res.Mime),
					"\n⚠️ Stateless mode: File storage disabled.",
					"\nBase64-encoded content (first 100 characters shown):",
					base64.StdEncoding.EncodeToString(preview) + "...",
				}
				return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
			}

			handle, err := store.Save(res.Bytes, plan.OutputName, plan.OutputMime)
			if err != nil {
				return mcp.NewToolResultText(fmt.Sprintf(
					"Error: Failed to save file for download.\nFile was downloaded successfully (%.1f KB) but could not be saved.\n\nError details: %v",
					sizeKB, err)), nil
			}

			lines := []string{
				"File downloaded successfully!",
				fmt.Sprintf("File: %s", ref.Name()),
				fmt.Sprintf("File ID: %s", ref.ID),
				fmt.Sprintf("Size: %.1f KB (%d bytes)", sizeKB, res.TotalSize),
				fmt.Sprintf("MIME Type: %s", res.Mime),
				fmt.Sprintf("\n📎 Download URL: %s", store.URL(handle)),
				"\nThe file has been saved and is available at the URL above.",
				"The file will expire after 1 hour.",
			}

			if plan.NeedsExport() {
				lines = append(lines, fmt.Sprintf("\nNote: Google native file exported to %s format.", plan.OutputMime))
			}

			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	return nil
}

// decodeContent turns downloaded bytes into display text. Office containers
// go through the text extractor first; anything that is not valid UTF-8
// afterwards is reported as binary rather than emitted raw.
func decodeContent(data []byte, mimeType string) string {
	if office.IsOfficeMime(mimeType) {
		if text, ok := office.ExtractText(data, mimeType); ok {
			return text
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	return fmt.Sprintf("[Binary or unsupported text encoding for mimeType '%s' - %d bytes]", mimeType, len(data))
}
