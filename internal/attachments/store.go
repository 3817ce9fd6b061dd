// Package attachments provides short-lived local storage for downloaded
// file content, exposing each saved file through an expiring HTTP URL.
package attachments

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/drivemcp/drivemcp/internal/logging"
)

// DefaultTTL is how long a saved file stays downloadable.
const DefaultTTL = time.Hour

// Store keeps saved files on disk and tracks their expiry. All methods are
// safe for concurrent use.
type Store struct {
	dir     string
	baseURL string
	ttl     time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	path     string
	filename string
	mimeType string
	size     int64
	expires  time.Time
}

// NewStore creates a store rooted at dir; an empty dir gets a fresh
// temporary directory. baseURL is the externally reachable prefix of the
// HTTP server that will serve Handler (e.g. "http://localhost:9090").
func NewStore(dir, baseURL string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "drivemcp-attachments-")
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment directory: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]*entry),
	}, nil
}

// Save writes data to disk and returns the handle for URL generation.
func (s *Store) Save(data []byte, filename, mimeType string) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}

	filename = SanitizeFilename(filename)
	if filename == "" {
		filename = "download"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	path := filepath.Join(s.dir, id)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}

	s.mu.Lock()
	s.entries[id] = &entry{
		path:     path,
		filename: filename,
		mimeType: mimeType,
		size:     int64(len(data)),
		expires:  time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return id, nil
}

// URL returns the download URL for a saved file, or "" for an unknown or
// expired handle.
func (s *Store) URL(id string) string {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok || time.Now().After(e.expires) {
		return ""
	}
	return fmt.Sprintf("%s/attachments/%s/%s", s.baseURL, id, url.PathEscape(e.filename))
}

// TTL returns the configured lifetime of saved files.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Handler serves saved files under /attachments/{id}/{filename}. Expired
// or unknown handles return 404.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/attachments/")
		id, _, _ := strings.Cut(rest, "/")
		if id == "" {
			http.NotFound(w, r)
			return
		}

		s.mu.Lock()
		e, ok := s.entries[id]
		s.mu.Unlock()
		if !ok || time.Now().After(e.expires) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", e.mimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.filename))
		http.ServeFile(w, r, e.path)
	})
}

// PurgeExpired removes expired files. Returns the number removed.
func (s *Store) PurgeExpired() int {
	now := time.Now()

	s.mu.Lock()
	var stale []*entry
	for id, e := range s.entries {
		if now.After(e.expires) {
			stale = append(stale, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove expired attachment", slog.String("path", e.path), logging.Err(err))
		}
	}
	return len(stale)
}

// StartJanitor purges expired files periodically until done is closed.
func (s *Store) StartJanitor(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if n := s.PurgeExpired(); n > 0 {
					s.logger.Debug("Purged expired attachments", "count", n)
				}
			}
		}
	}()
}

// Close removes the backing directory and all saved files.
func (s *Store) Close() error {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
	return os.RemoveAll(s.dir)
}

// SanitizeFilename strips path separators and traversal sequences.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate attachment id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
