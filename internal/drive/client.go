package drive

import (
	"context"
	"fmt"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/drivemcp/drivemcp/internal/google"
)

const (
	// MimeTypeFolder is the MIME type for Google Drive folders
	MimeTypeFolder = "application/vnd.google-apps.folder"

	// MimeTypeShortcut is the sentinel MIME type for Drive shortcuts
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"

	// RootFolderID is the alias for the user's My Drive root
	RootFolderID = "root"
)

// Native Google document MIME types
const (
	MimeTypeDocument     = "application/vnd.google-apps.document"
	MimeTypeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypePresentation = "application/vnd.google-apps.presentation"
)

// listFields are the metadata fields fetched on list/search calls.
const listFields = "files(id, name, mimeType, size, modifiedTime, webViewLink)"

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a new Google Drive client with OAuth2
// authentication for a specific account. Returns an error if no valid token
// exists - use HasTokenForAccount() to check first.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s. Please authorize access first: %w", account, err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: driveService,
		account: account,
	}, nil
}

// NewClient creates a new Google Drive client for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// NewClientForService wraps an existing Drive service, bypassing token
// lookup. Lets callers point the client at a preconfigured service, for
// example one backed by a test server.
func NewClientForService(service *drive.Service, account string) *Client {
	return &Client{service: service, account: account}
}

// List executes a files.list call with the given validated parameters.
func (c *Client) List(ctx context.Context, lq ListQuery) ([]*FileInfo, error) {
	call := c.service.Files.List().
		Context(ctx).
		Q(lq.Query).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(lq.IncludeAllDrives)

	if lq.PageSize > 0 {
		call = call.PageSize(lq.PageSize)
	}
	if lq.DriveID != "" {
		call = call.DriveId(lq.DriveID)
	}
	if lq.Corpora != "" {
		call = call.Corpora(lq.Corpora)
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, translateAPIError("listing files", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, nil
}

// GetFile retrieves metadata for a specific file without shortcut resolution.
func (c *Client) GetFile(ctx context.Context, fileID string, fields string) (*FileInfo, error) {
	if fileID == "" {
		return nil, invalidArgumentError("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(googleapiField(fields)).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("file %s", fileID), err)
	}
	return convertToFileInfo(file), nil
}

// CreatePermission creates a permission on a file. Validation of role, type
// and expiration happens in SharePlan before this is called.
func (c *Client) CreatePermission(ctx context.Context, fileID string, opts *ShareOptions) (*Permission, error) {
	body := &drive.Permission{
		Type: opts.Type,
		Role: opts.Role,
	}

	switch opts.Type {
	case TypeUser, TypeGroup:
		body.EmailAddress = opts.ShareWith
	case TypeDomain:
		body.Domain = opts.ShareWith
	}

	if opts.ExpirationTime != "" {
		body.ExpirationTime = opts.ExpirationTime
	}
	if opts.AllowFileDiscovery != nil && (opts.Type == TypeDomain || opts.Type == TypeAnyone) {
		body.AllowFileDiscovery = *opts.AllowFileDiscovery
		if !*opts.AllowFileDiscovery {
			body.ForceSendFields = append(body.ForceSendFields, "AllowFileDiscovery")
		}
	}

	call := c.service.Permissions.Create(fileID, body).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id, type, role, emailAddress, domain, expirationTime")

	if opts.Type == TypeUser || opts.Type == TypeGroup {
		call = call.SendNotificationEmail(opts.SendNotificationEmail)
		if opts.EmailMessage != "" {
			call = call.EmailMessage(opts.EmailMessage)
		}
	}

	created, err := call.Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("sharing file %s", fileID), err)
	}
	return convertToPermission(created), nil
}

// GetPermissionRole fetches the current role of an existing permission.
func (c *Client) GetPermissionRole(ctx context.Context, fileID, permissionID string) (string, error) {
	perm, err := c.service.Permissions.Get(fileID, permissionID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("role").
		Do()
	if err != nil {
		return "", translateAPIError(fmt.Sprintf("permission %s", permissionID), err)
	}
	return perm.Role, nil
}

// UpdatePermission updates the role and/or expiration of an existing
// permission. The API requires a role in the body, so the caller must pass
// one (fetch the current role first when only the expiration changes).
func (c *Client) UpdatePermission(ctx context.Context, fileID, permissionID, role, expirationTime string) (*Permission, error) {
	body := &drive.Permission{Role: role}
	if expirationTime != "" {
		body.ExpirationTime = expirationTime
	}

	updated, err := c.service.Permissions.Update(fileID, permissionID, body).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id, type, role, emailAddress, domain, expirationTime").
		Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("permission %s", permissionID), err)
	}
	return convertToPermission(updated), nil
}

// DeletePermission removes a permission from a file, revoking access.
func (c *Client) DeletePermission(ctx context.Context, fileID, permissionID string) error {
	err := c.service.Permissions.Delete(fileID, permissionID).
		Context(ctx).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return translateAPIError(fmt.Sprintf("permission %s", permissionID), err)
	}
	return nil
}

// TransferOwnership makes newOwnerEmail the owner of the file. The previous
// owner is demoted to writer by the API. Irreversible.
func (c *Client) TransferOwnership(ctx context.Context, fileID, newOwnerEmail string, moveToNewOwnersRoot bool) error {
	body := &drive.Permission{
		Type:         TypeUser,
		Role:         RoleOwner,
		EmailAddress: newOwnerEmail,
	}

	_, err := c.service.Permissions.Create(fileID, body).
		Context(ctx).
		TransferOwnership(true).
		MoveToNewOwnersRoot(moveToNewOwnersRoot).
		SupportsAllDrives(true).
		Fields("id, type, role, emailAddress").
		Do()
	if err != nil {
		return translateAPIError(fmt.Sprintf("transferring ownership of %s", fileID), err)
	}
	return nil
}

// googleapiField normalizes a caller-friendly comma-separated field list.
func googleapiField(fields string) googleapi.Field {
	if fields == "" {
		return "id, name, mimeType"
	}
	return googleapi.Field(fields)
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:                           f.Id,
		Name:                         f.Name,
		MimeType:                     f.MimeType,
		Size:                         f.Size,
		HasSize:                      f.Size > 0,
		WebViewLink:                  f.WebViewLink,
		WebContentLink:               f.WebContentLink,
		Parents:                      f.Parents,
		Shared:                       f.Shared,
		Trashed:                      f.Trashed,
		Description:                  f.Description,
		Starred:                      f.Starred,
		WritersCanShare:              f.WritersCanShare,
		CopyRequiresWriterPermission: f.CopyRequiresWriterPermission,
		Properties:                   f.Properties,
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	for _, owner := range f.Owners {
		info.Owners = append(info.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	if f.SharingUser != nil {
		info.SharingUser = &User{
			DisplayName:  f.SharingUser.DisplayName,
			EmailAddress: f.SharingUser.EmailAddress,
		}
	}

	for _, perm := range f.Permissions {
		info.Permissions = append(info.Permissions, *convertToPermission(perm))
	}

	return info
}

// convertToPermission converts a Drive API Permission to our Permission type
func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:                 p.Id,
		Type:               p.Type,
		Role:               p.Role,
		EmailAddress:       p.EmailAddress,
		Domain:             p.Domain,
		DisplayName:        p.DisplayName,
		ExpirationTime:     p.ExpirationTime,
		AllowFileDiscovery: p.AllowFileDiscovery,
	}
}
