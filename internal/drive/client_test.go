package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	drive "google.golang.org/api/drive/v3"
)

func TestConvertToFileInfo(t *testing.T) {
	modifiedTime := "2026-01-02T15:30:00Z"

	driveFile := &drive.File{
		Id:             "file123",
		Name:           "test.pdf",
		MimeType:       "application/pdf",
		Size:           1024,
		ModifiedTime:   modifiedTime,
		WebViewLink:    "https://drive.google.com/file/d/file123/view",
		WebContentLink: "https://drive.google.com/uc?id=file123",
		Parents:        []string{"parent1", "parent2"},
		Shared:         true,
		Trashed:        true,
		Starred:        true,
		Description:    "quarterly numbers",
		Owners: []*drive.User{
			{
				DisplayName:  "Test User",
				EmailAddress: "test@example.com",
			},
		},
		SharingUser: &drive.User{
			DisplayName:  "Sharer",
			EmailAddress: "sharer@example.com",
		},
		Permissions: []*drive.Permission{
			{
				Id:           "perm123",
				Type:         "user",
				Role:         "reader",
				EmailAddress: "reader@example.com",
				DisplayName:  "Reader User",
			},
		},
		Properties: map[string]string{"dept": "finance"},
	}

	fileInfo := convertToFileInfo(driveFile)

	assert.Equal(t, "file123", fileInfo.ID)
	assert.Equal(t, "test.pdf", fileInfo.Name)
	assert.Equal(t, "application/pdf", fileInfo.MimeType)
	assert.Equal(t, int64(1024), fileInfo.Size)
	assert.True(t, fileInfo.HasSize)
	assert.Equal(t, "https://drive.google.com/file/d/file123/view", fileInfo.WebViewLink)
	assert.Equal(t, "https://drive.google.com/uc?id=file123", fileInfo.WebContentLink)
	assert.True(t, fileInfo.Shared)
	assert.True(t, fileInfo.Trashed)
	assert.True(t, fileInfo.Starred)
	assert.Equal(t, "quarterly numbers", fileInfo.Description)
	assert.Equal(t, []string{"parent1", "parent2"}, fileInfo.Parents)

	expectedModified, _ := time.Parse(time.RFC3339, modifiedTime)
	assert.True(t, fileInfo.ModifiedTime.Equal(expectedModified))

	if assert.Len(t, fileInfo.Owners, 1) {
		assert.Equal(t, "Test User", fileInfo.Owners[0].DisplayName)
		assert.Equal(t, "test@example.com", fileInfo.Owners[0].EmailAddress)
	}

	if assert.NotNil(t, fileInfo.SharingUser) {
		assert.Equal(t, "sharer@example.com", fileInfo.SharingUser.EmailAddress)
	}

	if assert.Len(t, fileInfo.Permissions, 1) {
		perm := fileInfo.Permissions[0]
		assert.Equal(t, "perm123", perm.ID)
		assert.Equal(t, "user", perm.Type)
		assert.Equal(t, "reader", perm.Role)
		assert.Equal(t, "reader@example.com", perm.EmailAddress)
	}

	assert.Equal(t, "finance", fileInfo.Properties["dept"])
}

func TestConvertToFileInfoFolderHasNoSize(t *testing.T) {
	fileInfo := convertToFileInfo(&drive.File{
		Id:       "folder1",
		Name:     "Docs",
		MimeType: MimeTypeFolder,
	})
	assert.False(t, fileInfo.HasSize, "folders should report no size")
}

func TestConvertToPermission(t *testing.T) {
	perm := convertToPermission(&drive.Permission{
		Id:                 "p1",
		Type:               "domain",
		Role:               "reader",
		Domain:             "example.com",
		ExpirationTime:     "2026-12-31T00:00:00Z",
		AllowFileDiscovery: true,
	})
	assert.Equal(t, "p1", perm.ID)
	assert.Equal(t, "domain", perm.Type)
	assert.Equal(t, "reader", perm.Role)
	assert.Equal(t, "example.com", perm.Domain)
	assert.Equal(t, "2026-12-31T00:00:00Z", perm.ExpirationTime)
	assert.True(t, perm.AllowFileDiscovery)
}

func TestItemRefFallbacks(t *testing.T) {
	ref := &ItemRef{RawID: "x", ID: "x"}
	assert.Equal(t, "Unknown File", ref.Name())
	assert.Equal(t, "#", ref.WebViewLink())
	assert.Equal(t, "", ref.MimeType())
}
