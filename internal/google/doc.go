// Package google provides OAuth2 authentication and token management for
// the Google Drive API.
//
// Tokens are stored per account as files in the user's cache directory.
// OAuth client credentials come from the GOOGLE_OAUTH_CLIENT_ID and
// GOOGLE_OAUTH_CLIENT_SECRET environment variables so each deployment
// brings its own OAuth application.
package google
