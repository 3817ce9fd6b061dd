package drive

import "time"

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (not populated for folders or
	// native Google documents)
	Size int64 `json:"size,omitempty"`

	// HasSize reports whether the API returned a size for this item
	HasSize bool `json:"-"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink is a link for opening the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// WebContentLink is a link for downloading the file content (not available for folders)
	WebContentLink string `json:"webContentLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`

	// Owners are the owners of the file
	Owners []User `json:"owners,omitempty"`

	// Shared indicates whether the file is shared
	Shared bool `json:"shared"`

	// SharingUser is the user who shared the file, if any
	SharingUser *User `json:"sharingUser,omitempty"`

	// Permissions are the access permissions for the file
	Permissions []Permission `json:"permissions,omitempty"`

	// Trashed indicates whether the file is in the trash
	Trashed bool `json:"trashed"`

	// Description is the short description of the file
	Description string `json:"description,omitempty"`

	// Starred indicates whether the user has starred the file
	Starred bool `json:"starred"`

	// WritersCanShare indicates whether writers can share the file
	WritersCanShare bool `json:"writersCanShare"`

	// CopyRequiresWriterPermission restricts copying to writers
	CopyRequiresWriterPermission bool `json:"copyRequiresWriterPermission"`

	// Properties are user-visible custom key/value properties
	Properties map[string]string `json:"properties,omitempty"`
}

// User represents a Google Drive user (owner, permission holder, etc.)
type User struct {
	// DisplayName is the display name of the user
	DisplayName string `json:"displayName"`

	// EmailAddress is the email address of the user
	EmailAddress string `json:"emailAddress"`
}

// Permission represents access permissions for a file
type Permission struct {
	// ID is the unique identifier for the permission
	ID string `json:"id"`

	// Type is the type of grantee (user, group, domain, anyone)
	Type string `json:"type"`

	// Role is the role granted by this permission (owner, writer, commenter, reader)
	Role string `json:"role"`

	// EmailAddress is the email address of the user or group (if type is user or group)
	EmailAddress string `json:"emailAddress,omitempty"`

	// Domain is the domain to which this permission refers (if type is domain)
	Domain string `json:"domain,omitempty"`

	// DisplayName is the display name of the user or group
	DisplayName string `json:"displayName,omitempty"`

	// ExpirationTime is the RFC 3339 time at which the permission expires, if set
	ExpirationTime string `json:"expirationTime,omitempty"`

	// AllowFileDiscovery indicates whether the file can be discovered through
	// search (domain and anyone types only)
	AllowFileDiscovery bool `json:"allowFileDiscovery,omitempty"`
}

// ItemRef is a resolved reference to a Drive item. The ID is canonical:
// it never names a shortcut, even if the caller-supplied id did.
type ItemRef struct {
	// RawID is the id the caller supplied
	RawID string

	// ID is the canonical id after shortcut resolution
	ID string

	// Info carries the metadata from the resolving fetch
	Info *FileInfo
}

// Name returns the resolved item name, or a placeholder when unknown.
func (r *ItemRef) Name() string {
	if r.Info == nil || r.Info.Name == "" {
		return "Unknown File"
	}
	return r.Info.Name
}

// MimeType returns the resolved item's MIME type.
func (r *ItemRef) MimeType() string {
	if r.Info == nil {
		return ""
	}
	return r.Info.MimeType
}

// WebViewLink returns the resolved item's view link, or "#" when unknown.
func (r *ItemRef) WebViewLink() string {
	if r.Info == nil || r.Info.WebViewLink == "" {
		return "#"
	}
	return r.Info.WebViewLink
}

// ListQuery is a validated parameter set for a files.list call.
type ListQuery struct {
	// Query is the final Drive query string
	Query string

	// PageSize is the maximum number of items to return
	PageSize int64

	// DriveID scopes the listing to a single shared drive when set
	DriveID string

	// Corpora selects the bodies of items to query ('user', 'drive', 'allDrives')
	Corpora string

	// IncludeAllDrives includes shared-drive items in results
	IncludeAllDrives bool
}

// ExportPlan describes how an item's content should be materialized.
// An empty ExportMime means the item is downloaded as-is.
type ExportPlan struct {
	SourceMime      string
	RequestedFormat string
	ExportMime      string
	OutputMime      string
	OutputName      string
}

// NeedsExport reports whether a server-side transcoding export is required.
func (p ExportPlan) NeedsExport() bool {
	return p.ExportMime != ""
}

// TransferResult is the outcome of a download: the raw bytes, the total
// size transferred and the MIME type they should be interpreted as.
type TransferResult struct {
	Bytes     []byte
	TotalSize int64
	Mime      string
}

// ShareOptions contains options for creating a single permission.
type ShareOptions struct {
	// Type is the type of grantee: "user", "group", "domain", or "anyone"
	Type string

	// Role is the role to grant: "reader", "commenter", or "writer"
	Role string

	// ShareWith is the email address (user/group), domain name (domain), or
	// empty for "anyone"
	ShareWith string

	// SendNotificationEmail indicates whether to send a notification email
	SendNotificationEmail bool

	// EmailMessage is a custom message to include in the notification email
	EmailMessage string

	// ExpirationTime is an optional RFC 3339 time after which the permission
	// is revoked
	ExpirationTime string

	// AllowFileDiscovery controls search discoverability for domain/anyone
	// shares; nil leaves the API default
	AllowFileDiscovery *bool
}

// ShareRecipient is one entry of a batch share request. Exactly one of
// Email or Domain is set, matching the Type.
type ShareRecipient struct {
	Email          string `json:"email,omitempty"`
	Domain         string `json:"domain,omitempty"`
	Role           string `json:"role,omitempty"`
	Type           string `json:"share_type,omitempty"`
	ExpirationTime string `json:"expiration_time,omitempty"`
}

// Identifier returns the principal this recipient names.
func (r ShareRecipient) Identifier() string {
	if r.Type == TypeDomain {
		return r.Domain
	}
	return r.Email
}

// UpdateOptions carries caller-supplied metadata overrides for an update.
// Nil pointer fields were not supplied and are left untouched server-side.
type UpdateOptions struct {
	Name                         *string
	Description                  *string
	MimeType                     *string
	Starred                      *bool
	Trashed                      *bool
	WritersCanShare              *bool
	CopyRequiresWriterPermission *bool
	Properties                   map[string]string

	// AddParents and RemoveParents are comma-separated folder ids; each
	// element may itself be a shortcut to a folder
	AddParents    string
	RemoveParents string
}
