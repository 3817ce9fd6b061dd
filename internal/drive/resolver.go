package drive

import (
	"context"
	"fmt"
	"strings"
)

// resolveFields are always fetched when resolving an id: enough to detect a
// shortcut and name the item.
const resolveFields = "id, name, mimeType, shortcutDetails"

// Resolve normalizes a caller-supplied id into a canonical ItemRef.
//
// If the id names a shortcut, the shortcut's target is fetched and returned
// instead, merging any extraFields into the second fetch. Exactly one level
// of indirection is followed; a shortcut whose target is itself a shortcut
// fails with ErrShortcutChain.
func (c *Client) Resolve(ctx context.Context, id string, extraFields ...string) (*ItemRef, error) {
	if id == "" {
		return nil, invalidArgumentError("file id is required")
	}

	fields := resolveFields
	if extra := strings.Join(extraFields, ", "); extra != "" {
		fields += ", " + extra
	}

	file, err := c.service.Files.Get(id).
		Context(ctx).
		Fields(googleapiField(fields)).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("file %s", id), err)
	}

	if file.MimeType != MimeTypeShortcut {
		return &ItemRef{RawID: id, ID: file.Id, Info: convertToFileInfo(file)}, nil
	}

	if file.ShortcutDetails == nil || file.ShortcutDetails.TargetId == "" {
		return nil, notFoundError(fmt.Sprintf("shortcut %s has no target", id), nil)
	}

	target, err := c.service.Files.Get(file.ShortcutDetails.TargetId).
		Context(ctx).
		Fields(googleapiField(fields)).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("shortcut target %s", file.ShortcutDetails.TargetId), err)
	}

	if target.MimeType == MimeTypeShortcut {
		return nil, &wrapError{
			underlying: ErrShortcutChain,
			msg:        fmt.Sprintf("shortcut %s targets shortcut %s", id, target.Id),
		}
	}

	return &ItemRef{RawID: id, ID: target.Id, Info: convertToFileInfo(target)}, nil
}

// ResolveFolder resolves an id that must name a folder. The "root" alias is
// returned unchanged without a lookup; any other id goes through Resolve, so
// shortcuts to folders are accepted.
func (c *Client) ResolveFolder(ctx context.Context, id string) (string, error) {
	if id == RootFolderID {
		return id, nil
	}

	ref, err := c.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	if ref.MimeType() != MimeTypeFolder {
		return "", invalidArgumentError(fmt.Sprintf("%s is not a folder (mimeType %q)", id, ref.MimeType()))
	}
	return ref.ID, nil
}
