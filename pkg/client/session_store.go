package client

import (
	"encoding/json"
	"os"
	"sync"

	"evolt/internal/models"
)

// SessionStore holds the bearer token and current user. When given a file
// path it persists the session there so it survives restarts, like the
// browser client keeps its token in local storage.
type SessionStore struct {
	mu    sync.Mutex
	path  string
	token string
	user  *models.User
}

type persistedSession struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// NewSessionStore builds a store, loading any previously persisted session.
func NewSessionStore(path string) *SessionStore {
	s := &SessionStore{path: path}
	s.load()
	return s
}

// Token returns the stored bearer token, empty when signed out.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the stored account, nil when signed out.
func (s *SessionStore) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a token is present.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set stores a fresh session and persists it.
func (s *SessionStore) Set(token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return s.persist()
}

func (s *SessionStore) setUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	_ = s.persist()
}

// Clear drops the session and removes the persisted copy.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if s.path != "" {
		_ = os.Remove(s.path)
	}
}

func (s *SessionStore) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var stored persistedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}
	s.token = stored.Token
	s.user = stored.User
}

func (s *SessionStore) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(persistedSession{Token: s.token, User: s.user})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
