package drive

import (
	"fmt"
	"strings"
	"time"
)

// Permission principal types accepted by the sharing API.
const (
	TypeUser   = "user"
	TypeGroup  = "group"
	TypeDomain = "domain"
	TypeAnyone = "anyone"
)

// Permission roles ordered from least to most privileged.
const (
	RoleReader    = "reader"
	RoleCommenter = "commenter"
	RoleWriter    = "writer"
	RoleOwner     = "owner"
)

var shareRoles = map[string]bool{
	RoleReader:    true,
	RoleCommenter: true,
	RoleWriter:    true,
}

var shareTypes = map[string]bool{
	TypeUser:   true,
	TypeGroup:  true,
	TypeDomain: true,
	TypeAnyone: true,
}

// ValidateShareRole checks a role for sharing operations. Ownership moves
// through the dedicated transfer operation, so "owner" is rejected here.
func ValidateShareRole(role string) error {
	if !shareRoles[role] {
		return invalidArgumentError(fmt.Sprintf("invalid role %q; must be one of: reader, commenter, writer", role))
	}
	return nil
}

// ValidateShareType checks the principal type for sharing operations.
func ValidateShareType(shareType string) error {
	if !shareTypes[shareType] {
		return invalidArgumentError(fmt.Sprintf("invalid type %q; must be one of: user, group, domain, anyone", shareType))
	}
	return nil
}

// ValidateExpirationTime checks an expiration timestamp before anything
// reaches the network. Empty means no expiration.
func ValidateExpirationTime(expiration string) error {
	if expiration == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, expiration); err != nil {
		return invalidArgumentError(fmt.Sprintf("invalid expirationTime %q; must be RFC 3339, e.g. 2026-12-31T23:59:59Z", expiration))
	}
	return nil
}

// Validate checks a share request for internal consistency: role and type
// must be known, and user/group/domain principals need a target while
// "anyone" must not have one.
func (o *ShareOptions) Validate() error {
	if err := ValidateShareRole(o.Role); err != nil {
		return err
	}
	if err := ValidateShareType(o.Type); err != nil {
		return err
	}
	if err := ValidateExpirationTime(o.ExpirationTime); err != nil {
		return err
	}

	switch o.Type {
	case TypeUser, TypeGroup:
		if o.ShareWith == "" {
			return invalidArgumentError(fmt.Sprintf("shareWith (email address) is required when type is %q", o.Type))
		}
	case TypeDomain:
		if o.ShareWith == "" {
			return invalidArgumentError("shareWith (domain name) is required when type is \"domain\"")
		}
	case TypeAnyone:
		if o.ShareWith != "" {
			return invalidArgumentError("shareWith must be empty when type is \"anyone\"")
		}
	}
	return nil
}

// FormatPermission renders a permission as a single human-readable line.
// The principal is the email for users and groups, the domain for domain
// grants, and omitted entirely for "anyone" grants.
func FormatPermission(p *Permission) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Type: %s, Role: %s", p.Type, p.Role))

	switch p.Type {
	case TypeUser, TypeGroup:
		if p.EmailAddress != "" {
			b.WriteString(fmt.Sprintf(", Email: %s", p.EmailAddress))
		}
	case TypeDomain:
		if p.Domain != "" {
			b.WriteString(fmt.Sprintf(", Domain: %s", p.Domain))
		}
	}
	if p.ExpirationTime != "" {
		b.WriteString(fmt.Sprintf(", Expires: %s", p.ExpirationTime))
	}
	b.WriteString(fmt.Sprintf(" (ID: %s)", p.ID))
	return b.String()
}

// HasPublicLink reports whether any permission grants link-based public
// access, i.e. an "anyone" grant regardless of role.
func HasPublicLink(perms []*Permission) (bool, string) {
	for _, p := range perms {
		if p.Type == TypeAnyone {
			return true, p.Role
		}
	}
	return false, ""
}
