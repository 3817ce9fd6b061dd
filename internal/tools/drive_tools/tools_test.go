package drive_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/drivemcp/drivemcp/internal/drive"
	"github.com/drivemcp/drivemcp/internal/tools/batch"
)

func TestFormatItemLine(t *testing.T) {
	modified := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		file *drive.FileInfo
		want string
	}{
		{
			name: "file with size and link",
			file: &drive.FileInfo{
				ID:           "file123",
				Name:         "report.pdf",
				MimeType:     "application/pdf",
				Size:         2048,
				HasSize:      true,
				ModifiedTime: modified,
				WebViewLink:  "https://drive.google.com/file/d/file123/view",
			},
			want: `- Name: "report.pdf" (ID: file123, Type: application/pdf, Size: 2048, Modified: 2025-03-14T09:30:00Z) Link: https://drive.google.com/file/d/file123/view`,
		},
		{
			name: "folder without size",
			file: &drive.FileInfo{
				ID:           "folder456",
				Name:         "Projects",
				MimeType:     drive.MimeTypeFolder,
				ModifiedTime: modified,
				WebViewLink:  "https://drive.google.com/drive/folders/folder456",
			},
			want: `- Name: "Projects" (ID: folder456, Type: application/vnd.google-apps.folder, Modified: 2025-03-14T09:30:00Z) Link: https://drive.google.com/drive/folders/folder456`,
		},
		{
			name: "missing modified time and link",
			file: &drive.FileInfo{
				ID:       "doc789",
				Name:     "Untitled",
				MimeType: drive.MimeTypeDocument,
			},
			want: `- Name: "Untitled" (ID: doc789, Type: application/vnd.google-apps.document, Modified: N/A) Link: #`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatItemLine(tt.file); got != tt.want {
				t.Errorf("formatItemLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"name":      "value",
		"empty":     "",
		"flag":      false,
		"page_size": float64(25),
		"zero":      float64(0),
	}

	if got := argString(args, "name", "fallback"); got != "value" {
		t.Errorf("argString(name) = %q, want %q", got, "value")
	}
	if got := argString(args, "empty", "fallback"); got != "fallback" {
		t.Errorf("argString(empty) = %q, want fallback", got)
	}
	if got := argString(args, "missing", "fallback"); got != "fallback" {
		t.Errorf("argString(missing) = %q, want fallback", got)
	}

	if got := argBool(args, "flag", true); got != false {
		t.Error("argBool(flag) should return the supplied false, not the default")
	}
	if got := argBool(args, "missing", true); got != true {
		t.Error("argBool(missing) should return the default")
	}

	if got := argInt(args, "page_size", 10); got != 25 {
		t.Errorf("argInt(page_size) = %d, want 25", got)
	}
	if got := argInt(args, "zero", 10); got != 10 {
		t.Errorf("argInt(zero) = %d, want default 10", got)
	}
	if got := argInt(args, "missing", 10); got != 10 {
		t.Errorf("argInt(missing) = %d, want default 10", got)
	}
}

func TestLinkOrNA(t *testing.T) {
	if got := linkOrNA(""); got != "N/A" {
		t.Errorf("linkOrNA(\"\") = %q, want N/A", got)
	}
	if got := linkOrNA("https://example.com"); got != "https://example.com" {
		t.Errorf("linkOrNA() = %q, want the link unchanged", got)
	}
}

func TestDecodeContent(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		got := decodeContent([]byte("hello world"), "text/plain")
		if got != "hello world" {
			t.Errorf("decodeContent() = %q, want %q", got, "hello world")
		}
	})

	t.Run("invalid utf8 reports binary", func(t *testing.T) {
		got := decodeContent([]byte{0xff, 0xfe, 0x00, 0x01}, "image/png")
		want := "[Binary or unsupported text encoding for mimeType 'image/png' - 4 bytes]"
		if got != want {
			t.Errorf("decodeContent() = %q, want %q", got, want)
		}
	})

	t.Run("office mime with unreadable payload reports binary", func(t *testing.T) {
		// Not a zip archive, so extraction fails and the UTF-8 check
		// rejects it too.
		got := decodeContent([]byte{0x50, 0x4b, 0xff, 0xff}, drive.MimeTypeDocx)
		if !strings.HasPrefix(got, "[Binary or unsupported text encoding") {
			t.Errorf("decodeContent() = %q, want binary notice", got)
		}
	})
}

func TestDriveImageURL(t *testing.T) {
	got := driveImageURL("abc123")
	want := "https://drive.google.com/uc?export=view&id=abc123"
	if got != want {
		t.Errorf("driveImageURL() = %q, want %q", got, want)
	}
}

func TestParseRecipients(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		raw := []interface{}{
			map[string]interface{}{"email": "alice@example.com", "role": "writer"},
			map[string]interface{}{"domain": "example.com", "share_type": "domain"},
		}

		recipients, err := parseRecipients(raw)
		if err != nil {
			t.Fatalf("parseRecipients() error = %v", err)
		}
		if len(recipients) != 2 {
			t.Fatalf("parseRecipients() returned %d recipients, want 2", len(recipients))
		}
		if recipients[0].Email != "alice@example.com" || recipients[0].Role != "writer" {
			t.Errorf("first recipient = %+v", recipients[0])
		}
		if recipients[1].Domain != "example.com" || recipients[1].Type != "domain" {
			t.Errorf("second recipient = %+v", recipients[1])
		}
	})

	t.Run("JSON string form", func(t *testing.T) {
		recipients, err := parseRecipients(`[{"email":"bob@example.com"}]`)
		if err != nil {
			t.Fatalf("parseRecipients() error = %v", err)
		}
		if len(recipients) != 1 || recipients[0].Email != "bob@example.com" {
			t.Errorf("parseRecipients() = %+v", recipients)
		}
	})

	t.Run("bare email string shorthand", func(t *testing.T) {
		recipients, err := parseRecipients("dave@example.com")
		if err != nil {
			t.Fatalf("parseRecipients() error = %v", err)
		}
		if len(recipients) != 1 || recipients[0].Email != "dave@example.com" {
			t.Errorf("parseRecipients() = %+v", recipients)
		}
		if recipients[0].Type != "" || recipients[0].Role != "" {
			t.Errorf("shorthand recipients must keep default type and role, got %+v", recipients[0])
		}
	})

	t.Run("array of email strings shorthand", func(t *testing.T) {
		recipients, err := parseRecipients([]interface{}{"eve@example.com", "frank@example.com"})
		if err != nil {
			t.Fatalf("parseRecipients() error = %v", err)
		}
		if len(recipients) != 2 || recipients[0].Email != "eve@example.com" || recipients[1].Email != "frank@example.com" {
			t.Errorf("parseRecipients() = %+v", recipients)
		}
	})

	t.Run("JSON string array of emails shorthand", func(t *testing.T) {
		recipients, err := parseRecipients(`["grace@example.com"]`)
		if err != nil {
			t.Fatalf("parseRecipients() error = %v", err)
		}
		if len(recipients) != 1 || recipients[0].Email != "grace@example.com" {
			t.Errorf("parseRecipients() = %+v", recipients)
		}
	})

	t.Run("nil is an error", func(t *testing.T) {
		if _, err := parseRecipients(nil); err == nil {
			t.Error("parseRecipients(nil) should fail")
		}
	})

	t.Run("empty list is an error", func(t *testing.T) {
		if _, err := parseRecipients([]interface{}{}); err == nil {
			t.Error("parseRecipients(empty) should fail")
		}
	})

	t.Run("invalid JSON string is an error", func(t *testing.T) {
		if _, err := parseRecipients("not json"); err == nil {
			t.Error("parseRecipients(invalid) should fail")
		}
	})
}

func TestShareRecipientSkips(t *testing.T) {
	// Skip paths return before any API call, so no client is needed.
	t.Run("missing email", func(t *testing.T) {
		result := shareRecipient(nil, nil, "file1", drive.ShareRecipient{Role: "reader"}, true, "")
		if result.Status != "error" {
			t.Fatalf("status = %q, want error", result.Status)
		}
		if result.ID != "" {
			t.Errorf("skipped recipients should have no id, got %q", result.ID)
		}
		if result.Error != "Skipped: missing email address" {
			t.Errorf("error = %q", result.Error)
		}
	})

	t.Run("missing domain", func(t *testing.T) {
		result := shareRecipient(nil, nil, "file1", drive.ShareRecipient{Type: "domain"}, true, "")
		if result.Error != "Skipped: missing domain for domain share" {
			t.Errorf("error = %q", result.Error)
		}
	})

	t.Run("invalid role is a per-recipient failure", func(t *testing.T) {
		result := shareRecipient(nil, nil, "file1",
			drive.ShareRecipient{Email: "carol@example.com", Role: "admin"}, true, "")
		if result.Status != "error" {
			t.Fatalf("status = %q, want error", result.Status)
		}
		if result.ID != "carol@example.com" {
			t.Errorf("id = %q, want the recipient identifier", result.ID)
		}
		if !strings.Contains(result.Error, "invalid role") {
			t.Errorf("error = %q, want invalid role message", result.Error)
		}
	})
}

func TestBatchShareContinuesAfterFailure(t *testing.T) {
	var permissionCalls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/permissions") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body gdrive.Permission
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding permission body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		permissionCalls = append(permissionCalls, body.EmailAddress)
		json.NewEncoder(w).Encode(&gdrive.Permission{
			Id:           "perm-" + body.EmailAddress,
			Type:         body.Type,
			Role:         body.Role,
			EmailAddress: body.EmailAddress,
		})
	}))
	defer srv.Close()

	service, err := gdrive.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("creating fake drive service: %v", err)
	}
	client := drive.NewClientForService(service, "test")

	// Recipient two carries a bad role; the recipients before and after it
	// must still be shared, in order.
	recipients := []drive.ShareRecipient{
		{Email: "alice@example.com", Role: "reader"},
		{Email: "bob@example.com", Role: "admin"},
		{Email: "carol@example.com", Role: "writer"},
	}

	results := make([]batch.Result, 0, len(recipients))
	for _, r := range recipients {
		results = append(results, shareRecipient(context.Background(), client, "file1", r, false, ""))
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "success" || results[0].ID != "alice@example.com" {
		t.Errorf("results[0] = %+v, want alice success", results[0])
	}
	if results[1].Status != "error" || results[1].ID != "bob@example.com" ||
		!strings.Contains(results[1].Error, "invalid role") {
		t.Errorf("results[1] = %+v, want bob invalid-role failure", results[1])
	}
	if results[2].Status != "success" || results[2].ID != "carol@example.com" {
		t.Errorf("results[2] = %+v, want carol success after the failure", results[2])
	}

	if got := batch.SummaryLine(results); got != "Summary: 2 succeeded, 1 failed" {
		t.Errorf("SummaryLine() = %q, want 2 succeeded and 1 failed", got)
	}

	wantCalls := []string{"alice@example.com", "carol@example.com"}
	if !slices.Equal(permissionCalls, wantCalls) {
		t.Errorf("permission calls = %v, want %v", permissionCalls, wantCalls)
	}
}

func TestFormatPermissionsReport(t *testing.T) {
	t.Run("private file", func(t *testing.T) {
		info := &drive.FileInfo{
			ID:       "file1",
			Name:     "budget.xlsx",
			MimeType: drive.MimeTypeXlsx,
			Size:     4096,
			HasSize:  true,
		}

		got := formatPermissionsReport("file1", info)

		for _, want := range []string{
			"File: budget.xlsx",
			"ID: file1",
			"Size: 4096 bytes",
			"  Shared: false",
			"  No additional permissions (private file)",
			"  View Link: N/A",
			"❌ This file is NOT shared with 'Anyone with the link'",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("report missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("publicly shared file", func(t *testing.T) {
		info := &drive.FileInfo{
			ID:          "file2",
			Name:        "logo.png",
			MimeType:    "image/png",
			Shared:      true,
			WebViewLink: "https://drive.google.com/file/d/file2/view",
			SharingUser: &drive.User{DisplayName: "Alice", EmailAddress: "alice@example.com"},
			Permissions: []drive.Permission{
				{ID: "anyone1", Type: "anyone", Role: "reader"},
				{ID: "perm2", Type: "user", Role: "writer", EmailAddress: "alice@example.com"},
			},
		}

		got := formatPermissionsReport("file2", info)

		for _, want := range []string{
			"Size: N/A bytes",
			"  Shared: true",
			"  Shared by: Alice (alice@example.com)",
			"  Number of permissions: 2",
			"    - Type: anyone, Role: reader (ID: anyone1)",
			"    - Type: user, Role: writer, Email: alice@example.com (ID: perm2)",
			"  View Link: https://drive.google.com/file/d/file2/view",
			"✅ This file is shared with 'Anyone with the link'",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("report missing %q:\n%s", want, got)
			}
		}
	})
}
