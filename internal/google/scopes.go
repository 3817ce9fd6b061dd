package google

// DefaultOAuthScopes are the Google OAuth scopes required for full Drive
// functionality. A single full-access Drive scope covers search, content
// download, uploads, metadata updates and permission management.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive",
}
