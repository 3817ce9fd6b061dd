package drive

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
)

const updateFields = "id, name, description, mimeType, parents, starred, trashed, webViewLink, writersCanShare, copyRequiresWriterPermission, properties"

// UpdatePlan is the result of diffing requested overrides against an item's
// current metadata: a sparse API body carrying only the supplied fields, the
// parent changes, and a caller-facing change report.
type UpdatePlan struct {
	// Body is nil when no metadata field changes; parent moves still apply.
	Body *drive.File

	// AddParents and RemoveParents are comma-separated resolved folder ids.
	AddParents    string
	RemoveParents string

	// Changes lists what will differ from the current state, one line per
	// change. Requests that match the current value are left out.
	Changes []string
}

// IsNoop reports whether the plan would send nothing to the API.
func (p *UpdatePlan) IsNoop() bool {
	return p.Body == nil && p.AddParents == "" && p.RemoveParents == ""
}

// PlanUpdate builds a sparse update from the caller's overrides. Only fields
// the caller actually supplied enter the body; everything else stays
// untouched server-side. The change report suppresses no-op assignments,
// treating an absent description and an empty one as equal. Parent moves
// are reported with the caller-supplied ids, right after the description
// line; resolving them to folder ids is the caller's job.
func PlanUpdate(current *FileInfo, opts *UpdateOptions) *UpdatePlan {
	plan := &UpdatePlan{}
	body := &drive.File{}
	hasBody := false

	if opts.Name != nil {
		body.Name = *opts.Name
		hasBody = true
		if *opts.Name != current.Name {
			plan.Changes = append(plan.Changes, fmt.Sprintf("Name: '%s' → '%s'", current.Name, *opts.Name))
		}
	}
	if opts.Description != nil {
		body.Description = *opts.Description
		body.ForceSendFields = append(body.ForceSendFields, "Description")
		hasBody = true
		if *opts.Description != current.Description {
			plan.Changes = append(plan.Changes, fmt.Sprintf("Description: %s → %s",
				displayValue(current.Description), displayValue(*opts.Description)))
		}
	}
	if opts.AddParents != "" {
		plan.Changes = append(plan.Changes, fmt.Sprintf("Added to folder(s): %s", opts.AddParents))
	}
	if opts.RemoveParents != "" {
		plan.Changes = append(plan.Changes, fmt.Sprintf("Removed from folder(s): %s", opts.RemoveParents))
	}
	if opts.MimeType != nil {
		// The type change enters the body but is not reported as a change
		// line; whether it takes effect depends on a content upload.
		body.MimeType = *opts.MimeType
		hasBody = true
	}
	if opts.Starred != nil {
		body.Starred = *opts.Starred
		body.ForceSendFields = append(body.ForceSendFields, "Starred")
		hasBody = true
		if *opts.Starred != current.Starred {
			if *opts.Starred {
				plan.Changes = append(plan.Changes, "File starred")
			} else {
				plan.Changes = append(plan.Changes, "File unstarred")
			}
		}
	}
	if opts.Trashed != nil {
		body.Trashed = *opts.Trashed
		body.ForceSendFields = append(body.ForceSendFields, "Trashed")
		hasBody = true
		if *opts.Trashed != current.Trashed {
			if *opts.Trashed {
				plan.Changes = append(plan.Changes, "File moved to trash")
			} else {
				plan.Changes = append(plan.Changes, "File restored from trash")
			}
		}
	}
	if opts.WritersCanShare != nil {
		body.WritersCanShare = *opts.WritersCanShare
		body.ForceSendFields = append(body.ForceSendFields, "WritersCanShare")
		hasBody = true
		if *opts.WritersCanShare != current.WritersCanShare {
			if *opts.WritersCanShare {
				plan.Changes = append(plan.Changes, "Writers can share the file")
			} else {
				plan.Changes = append(plan.Changes, "Writers cannot share the file")
			}
		}
	}
	if opts.CopyRequiresWriterPermission != nil {
		body.CopyRequiresWriterPermission = *opts.CopyRequiresWriterPermission
		body.ForceSendFields = append(body.ForceSendFields, "CopyRequiresWriterPermission")
		hasBody = true
		if *opts.CopyRequiresWriterPermission != current.CopyRequiresWriterPermission {
			if *opts.CopyRequiresWriterPermission {
				plan.Changes = append(plan.Changes, "Copying requires writer permission")
			} else {
				plan.Changes = append(plan.Changes, "Copying doesn't require writer permission")
			}
		}
	}
	if opts.Properties != nil {
		body.Properties = opts.Properties
		hasBody = true
		if len(opts.Properties) > 0 {
			plan.Changes = append(plan.Changes, fmt.Sprintf("Updated custom properties: %v", opts.Properties))
		}
	}

	if hasBody {
		plan.Body = body
	}
	return plan
}

// displayValue renders a possibly-empty string for change reports.
func displayValue(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}

// ResolveParentList resolves a comma-separated list of folder references,
// following shortcuts and rejecting non-folders. Empty input stays empty.
func (c *Client) ResolveParentList(ctx context.Context, parents string) (string, error) {
	if parents == "" {
		return "", nil
	}
	var resolved []string
	for _, part := range strings.Split(parents, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := c.ResolveFolder(ctx, part)
		if err != nil {
			return "", err
		}
		resolved = append(resolved, id)
	}
	return strings.Join(resolved, ","), nil
}

// UpdateFile applies a planned update. A nil plan body with parent moves
// still issues the call; a full no-op plan is the caller's responsibility
// to short-circuit.
func (c *Client) UpdateFile(ctx context.Context, fileID string, plan *UpdatePlan) (*FileInfo, error) {
	body := plan.Body
	if body == nil {
		body = &drive.File{}
	}
	call := c.service.Files.Update(fileID, body).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapiField(updateFields))
	if plan.AddParents != "" {
		call = call.AddParents(plan.AddParents)
	}
	if plan.RemoveParents != "" {
		call = call.RemoveParents(plan.RemoveParents)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("updating file %s", fileID), err)
	}
	return convertToFileInfo(updated), nil
}
