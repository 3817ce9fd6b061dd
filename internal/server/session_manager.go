package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// defaultSessionTimeout is how long an idle session keeps its Drive
// account binding before the sweeper drops it.
const defaultSessionTimeout = 24 * time.Hour

// ErrNoAuthorizationHeader is returned when a request carries no
// Authorization header to derive a session from.
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// driveSession binds one caller credential to a named Drive account.
// The account selects which token file backs the caller's Drive client.
type driveSession struct {
	account  string
	lastSeen time.Time
}

// SessionIDManager maps HTTP callers to Drive accounts. Each distinct
// Bearer credential hashes to a stable session id, so two users hitting
// the same server get separate accounts and never see each other's files.
// Sessions that stay idle past the timeout are swept periodically.
type SessionIDManager struct {
	sessions map[string]*driveSession
	mu       sync.RWMutex
	sweeper  *time.Ticker
	done     chan struct{}
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSessionIDManager creates a session manager with the default idle timeout.
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithTimeout(defaultSessionTimeout)
}

// NewSessionIDManagerWithTimeout creates a session manager with a custom
// idle timeout and starts its background sweep.
func NewSessionIDManagerWithTimeout(timeout time.Duration) *SessionIDManager {
	m := &SessionIDManager{
		sessions: make(map[string]*driveSession),
		sweeper:  time.NewTicker(10 * time.Minute),
		done:     make(chan struct{}),
		timeout:  timeout,
		logger:   slog.Default(),
	}
	go m.sweep()
	return m
}

// ResolveSessionID derives the session id for an HTTP request from its
// Authorization header. The credential is hashed, never stored, so session
// ids are safe to log.
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	// Hash the token itself so "Bearer x" and a bare "x" land in the
	// same session.
	token := strings.TrimPrefix(authHeader, "Bearer ")
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:]), nil
}

// GetAccountForSession returns the Drive account bound to a session.
// Unknown sessions fall back to the default account, which keeps
// single-user deployments working without any session setup.
func (m *SessionIDManager) GetAccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.lastSeen = time.Now()
		return s.account
	}
	return "default"
}

// SetAccountForSession binds a Drive account to a session id.
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &driveSession{
		account:  account,
		lastSeen: time.Now(),
	}
}

// RemoveSession drops a session's account binding.
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ListSessions returns all session ids with an account binding.
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// sweep drops bindings whose owners have gone quiet. A dropped session is
// not an error: the next request simply resolves to the default account
// until the caller rebinds.
func (m *SessionIDManager) sweep() {
	for {
		select {
		case <-m.sweeper.C:
			m.mu.Lock()
			now := time.Now()
			removed := 0
			for id, s := range m.sessions {
				if now.Sub(s.lastSeen) > m.timeout {
					delete(m.sessions, id)
					removed++
				}
			}
			m.mu.Unlock()
			if removed > 0 {
				m.logger.Info("Removed idle sessions", slog.Int("count", removed))
			}
		case <-m.done:
			return
		}
	}
}

// Stop ends the background sweep.
func (m *SessionIDManager) Stop() {
	m.sweeper.Stop()
	close(m.done)
}
