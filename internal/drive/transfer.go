package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	// DownloadChunkSize is the read granularity for downloads and for
	// spooling remote sources to scratch storage.
	DownloadChunkSize = 256 * 1024 // 256 KiB

	// UploadChunkSize is the resumable-upload chunk size. Google recommends
	// a minimum of 5 MiB.
	UploadChunkSize = 5 * 1024 * 1024
)

// TransferEnv describes the deployment the transfer engine runs in.
type TransferEnv struct {
	// Stateless means no durable scratch storage is available; remote
	// sources are buffered in memory instead of spooled to a temp file.
	Stateless bool

	// NetworkIsolated means the server process runs away from the caller's
	// machine (remote transport); file:// sources must name paths reachable
	// from the server, and unreachable paths fail with guidance.
	NetworkIsolated bool

	// HTTPClient fetches remote sources; nil means http.DefaultClient.
	HTTPClient *http.Client
}

func (e TransferEnv) httpClient() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

// UploadSource is the content for a file creation. Exactly one of Content
// (inline text) or FileURL (file://, http://, https://) should be set; when
// both are present FileURL wins.
type UploadSource struct {
	Content string
	FileURL string
}

// Download retrieves an item's content, transcoding through the export
// endpoint when the plan calls for it. The body is consumed in fixed-size
// chunks into an in-memory sink; a failed chunk read propagates as
// ErrTransientIO and never yields a partial result.
func (c *Client) Download(ctx context.Context, fileID string, plan ExportPlan) (*TransferResult, error) {
	var resp *http.Response
	var err error

	if plan.NeedsExport() {
		resp, err = c.service.Files.Export(fileID, plan.ExportMime).Context(ctx).Download()
	} else {
		resp, err = c.service.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, translateAPIError(fmt.Sprintf("downloading file %s", fileID), err)
	}
	defer resp.Body.Close()

	var sink bytes.Buffer
	total, err := copyChunked(&sink, resp.Body)
	if err != nil {
		return nil, transientIOError(fmt.Sprintf("downloading file %s after %d bytes", fileID, total), err)
	}

	return &TransferResult{
		Bytes:     sink.Bytes(),
		TotalSize: total,
		Mime:      plan.OutputMime,
	}, nil
}

// CreateFile uploads a new file into parentID (already folder-resolved).
// The upload runs as a resumable session in UploadChunkSize chunks.
// Returns the created file and the number of source bytes transferred.
func (c *Client) CreateFile(ctx context.Context, name, parentID, mimeType string, src UploadSource, env TransferEnv) (*FileInfo, int64, error) {
	if src.Content == "" && src.FileURL == "" {
		return nil, 0, invalidArgumentError("either content or fileUrl must be provided")
	}

	var (
		reader io.Reader
		total  int64
		err    error
	)

	if src.FileURL != "" {
		var cleanup func()
		reader, total, mimeType, cleanup, err = c.openSource(ctx, src.FileURL, mimeType, env)
		if err != nil {
			return nil, 0, err
		}
		if cleanup != nil {
			defer cleanup()
		}
	} else {
		reader = strings.NewReader(src.Content)
		total = int64(len(src.Content))
	}

	meta := &drive.File{
		Name:     name,
		Parents:  []string{parentID},
		MimeType: mimeType,
	}

	created, err := c.service.Files.Create(meta).
		Context(ctx).
		Media(reader, googleapi.ContentType(mimeType), googleapi.ChunkSize(UploadChunkSize)).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, 0, translateAPIError(fmt.Sprintf("creating file %q", name), err)
	}

	return convertToFileInfo(created), total, nil
}

// openSource turns a fileUrl into an upload reader. The returned MIME type
// may differ from the declared one when the remote server supplies a more
// specific Content-Type. cleanup, when non-nil, must run after the upload.
func (c *Client) openSource(ctx context.Context, fileURL, declaredMime string, env TransferEnv) (io.Reader, int64, string, func(), error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return nil, 0, "", nil, invalidArgumentError(fmt.Sprintf("invalid fileUrl %q", fileURL))
	}

	switch parsed.Scheme {
	case "file":
		return openLocalSource(parsed, declaredMime, env)
	case "http", "https":
		return c.openRemoteSource(ctx, fileURL, declaredMime, env)
	case "":
		return nil, 0, "", nil, invalidArgumentError("fileUrl is missing a URL scheme; use file://, http://, or https://")
	default:
		return nil, 0, "", nil, invalidArgumentError(fmt.Sprintf("unsupported URL scheme %q; only file://, http://, and https:// are supported", parsed.Scheme))
	}
}

// openLocalSource validates and opens a file:// source. In a
// network-isolated deployment an unreachable path gets guidance about
// server-local paths instead of a bare not-found.
func openLocalSource(parsed *url.URL, declaredMime string, env TransferEnv) (io.Reader, int64, string, func(), error) {
	path := localPath(parsed)

	fi, err := os.Stat(path)
	if err != nil {
		if env.NetworkIsolated {
			return nil, 0, "", nil, unsupportedError(fmt.Sprintf(
				"local file does not exist: %s. The server runs remotely, so file:// URLs must point to files reachable from the server process (e.g. a mounted volume), not the caller's machine; use an HTTP(S) URL instead", path))
		}
		return nil, 0, "", nil, invalidArgumentError(fmt.Sprintf("local file does not exist: %s", path))
	}
	if !fi.Mode().IsRegular() {
		if env.NetworkIsolated {
			return nil, 0, "", nil, unsupportedError(fmt.Sprintf(
				"path is not a regular file: %s. In remote deployments, mount the file into the server's filesystem or provide an HTTP(S) URL", path))
		}
		return nil, 0, "", nil, invalidArgumentError(fmt.Sprintf("path is not a regular file: %s", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, "", nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	cleanup := func() { f.Close() }
	return f, fi.Size(), declaredMime, cleanup, nil
}

// openRemoteSource fetches an http(s) source. With scratch storage the body
// is spooled to a bounded-lifetime temp file in fixed-size chunks, keeping
// peak memory flat regardless of file size; in stateless deployments the
// whole body is buffered in memory instead.
func (c *Client) openRemoteSource(ctx context.Context, fileURL, declaredMime string, env TransferEnv) (io.Reader, int64, string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, 0, "", nil, invalidArgumentError(fmt.Sprintf("invalid fileUrl %q", fileURL))
	}

	resp, err := env.httpClient().Do(req)
	if err != nil {
		return nil, 0, "", nil, transientIOError(fmt.Sprintf("fetching %s", fileURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, "", nil, transientIOError(fmt.Sprintf("fetching %s (status %d)", fileURL, resp.StatusCode), nil)
	}

	mimeType := remoteMime(resp, declaredMime)

	if env.Stateless {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, "", nil, transientIOError(fmt.Sprintf("reading %s", fileURL), err)
		}
		return bytes.NewReader(data), int64(len(data)), mimeType, nil, nil
	}

	tmp, err := os.CreateTemp("", "drivemcp-upload-*")
	if err != nil {
		return nil, 0, "", nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	total, err := copyChunked(tmp, resp.Body)
	if err != nil {
		cleanup()
		return nil, 0, "", nil, transientIOError(fmt.Sprintf("spooling %s after %d bytes", fileURL, total), err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, "", nil, fmt.Errorf("failed to rewind scratch file: %w", err)
	}

	return tmp, total, mimeType, cleanup, nil
}

// remoteMime prefers the response Content-Type over the declared MIME type,
// unless the header carries the generic octet-stream sentinel.
func remoteMime(resp *http.Response, declaredMime string) string {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, MimeTypeOctetStream) {
		return declaredMime
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType
}

// localPath converts a file:// URL into a filesystem path, keeping UNC-style
// hosts intact.
func localPath(parsed *url.URL) string {
	path := parsed.Path
	if parsed.Host != "" && !strings.EqualFold(parsed.Host, "localhost") {
		path = "//" + parsed.Host + path
	}
	return filepath.FromSlash(path)
}

// copyChunked copies src to dst in DownloadChunkSize reads, returning the
// byte count transferred before any failure.
func copyChunked(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, DownloadChunkSize)
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
