package drive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

type flakyReader struct {
	data []byte
	err  error
	pos  int
}

func (r *flakyReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestCopyChunked(t *testing.T) {
	// Spans multiple chunks so the loop boundary is exercised.
	data := bytes.Repeat([]byte("abcdefgh"), DownloadChunkSize/4)

	var sink bytes.Buffer
	total, err := copyChunked(&sink, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("copyChunked failed: %v", err)
	}
	if total != int64(len(data)) {
		t.Errorf("total = %d, want %d", total, len(data))
	}
	if !bytes.Equal(sink.Bytes(), data) {
		t.Error("copied data does not match source")
	}
}

func TestCopyChunkedMidStreamFailure(t *testing.T) {
	src := &flakyReader{
		data: bytes.Repeat([]byte("x"), DownloadChunkSize+100),
		err:  errors.New("connection reset"),
	}

	var sink bytes.Buffer
	total, err := copyChunked(&sink, src)
	if err == nil {
		t.Fatal("expected a mid-stream error")
	}
	if total != int64(DownloadChunkSize+100) {
		t.Errorf("total = %d, want the bytes read before the failure", total)
	}
}

func TestRemoteMime(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		declared    string
		want        string
	}{
		{"header wins", "application/pdf", "text/plain", "application/pdf"},
		{"octet-stream keeps declared", "application/octet-stream", "text/plain", "text/plain"},
		{"missing header keeps declared", "", "text/plain", "text/plain"},
		{"charset parameter stripped", "text/html; charset=utf-8", "text/plain", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.contentType != "" {
				resp.Header.Set("Content-Type", tt.contentType)
			}
			if got := remoteMime(resp, tt.declared); got != tt.want {
				t.Errorf("remoteMime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"file:///tmp/upload.txt", filepath.FromSlash("/tmp/upload.txt")},
		{"file://localhost/tmp/upload.txt", filepath.FromSlash("/tmp/upload.txt")},
		{"file://fileserver/share/doc.pdf", filepath.FromSlash("//fileserver/share/doc.pdf")},
	}

	for _, tt := range tests {
		parsed, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", tt.rawURL, err)
		}
		if got := localPath(parsed); got != tt.want {
			t.Errorf("localPath(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}

func TestOpenLocalSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("regular file opens", func(t *testing.T) {
		parsed, _ := url.Parse("file://" + path)
		reader, size, mime, cleanup, err := openLocalSource(parsed, "text/plain", TransferEnv{})
		if err != nil {
			t.Fatalf("openLocalSource failed: %v", err)
		}
		defer cleanup()
		if size != 5 {
			t.Errorf("size = %d, want 5", size)
		}
		if mime != "text/plain" {
			t.Errorf("mime = %q, want text/plain", mime)
		}
		data, _ := io.ReadAll(reader)
		if string(data) != "hello" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("missing file is invalid argument", func(t *testing.T) {
		parsed, _ := url.Parse("file://" + filepath.Join(dir, "nope.txt"))
		_, _, _, _, err := openLocalSource(parsed, "", TransferEnv{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing file in isolated mode is unsupported with guidance", func(t *testing.T) {
		parsed, _ := url.Parse("file://" + filepath.Join(dir, "nope.txt"))
		_, _, _, _, err := openLocalSource(parsed, "", TransferEnv{NetworkIsolated: true})
		if !errors.Is(err, ErrUnsupportedOperation) {
			t.Errorf("expected ErrUnsupportedOperation, got %v", err)
		}
		if err == nil || !bytes.Contains([]byte(err.Error()), []byte("server")) {
			t.Errorf("guidance text missing from %v", err)
		}
	})

	t.Run("directory is not a regular file", func(t *testing.T) {
		parsed, _ := url.Parse("file://" + dir)
		_, _, _, _, err := openLocalSource(parsed, "", TransferEnv{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestOpenRemoteSource(t *testing.T) {
	payload := bytes.Repeat([]byte("remote-data"), 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file.bin":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(payload)
		case "/generic":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClientForService(nil, "test")

	t.Run("stateless buffers in memory", func(t *testing.T) {
		reader, size, mime, cleanup, err := client.openRemoteSource(
			context.Background(), srv.URL+"/file.bin", "text/plain", TransferEnv{Stateless: true})
		if err != nil {
			t.Fatalf("openRemoteSource failed: %v", err)
		}
		if cleanup != nil {
			defer cleanup()
		}
		if size != int64(len(payload)) {
			t.Errorf("size = %d, want %d", size, len(payload))
		}
		if mime != "application/pdf" {
			t.Errorf("mime = %q, header should override declared", mime)
		}
		data, _ := io.ReadAll(reader)
		if !bytes.Equal(data, payload) {
			t.Error("buffered content mismatch")
		}
	})

	t.Run("stateful spools to scratch file", func(t *testing.T) {
		reader, size, mime, cleanup, err := client.openRemoteSource(
			context.Background(), srv.URL+"/generic", "text/markdown", TransferEnv{})
		if err != nil {
			t.Fatalf("openRemoteSource failed: %v", err)
		}
		if cleanup == nil {
			t.Fatal("spooled source must have a cleanup")
		}
		defer cleanup()
		if size != int64(len(payload)) {
			t.Errorf("size = %d, want %d", size, len(payload))
		}
		if mime != "text/markdown" {
			t.Errorf("mime = %q, octet-stream header must not override declared", mime)
		}
		data, _ := io.ReadAll(reader)
		if !bytes.Equal(data, payload) {
			t.Error("spooled content mismatch")
		}
	})

	t.Run("non-200 is transient", func(t *testing.T) {
		_, _, _, _, err := client.openRemoteSource(
			context.Background(), srv.URL+"/missing", "", TransferEnv{})
		if !errors.Is(err, ErrTransientIO) {
			t.Errorf("expected ErrTransientIO, got %v", err)
		}
	})
}

func TestCreateFileSourceValidation(t *testing.T) {
	client := NewClientForService(nil, "test")
	ctx := context.Background()

	t.Run("no source", func(t *testing.T) {
		_, _, err := client.CreateFile(ctx, "f", "root", "text/plain", UploadSource{}, TransferEnv{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, _, err := client.CreateFile(ctx, "f", "root", "text/plain",
			UploadSource{FileURL: "ftp://host/file.txt"}, TransferEnv{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing scheme", func(t *testing.T) {
		_, _, err := client.CreateFile(ctx, "f", "root", "text/plain",
			UploadSource{FileURL: "/tmp/file.txt"}, TransferEnv{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
