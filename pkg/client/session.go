package client

import (
	"encoding/json"
	"os"
	"sync"
)

// SessionState is an immutable snapshot of the authenticated session.
type SessionState struct {
	User          *User `json:"user"`
	Token         string      `json:"token"`
	Authenticated bool        `json:"authenticated"`
}

// SessionStore holds the session and persists it to a JSON file, the
// localStorage analogue. A store with an empty path is memory-only.
type SessionStore struct {
	mu    sync.RWMutex
	path  string
	state SessionState
}

// NewSessionStore builds a store, loading any previously persisted session.
func NewSessionStore(path string) *SessionStore {
	s := &SessionStore{path: path}
	s.load()
	return s
}

// Begin records a fresh login or registration.
func (s *SessionStore) Begin(user *User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{User: user, Token: token, Authenticated: true}
	s.persist()
}

// SetUser refreshes the cached user without touching the token.
func (s *SessionStore) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.User = user
	s.state = next
	s.persist()
}

// Clear forgets the session and removes the persisted file.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{}
	if s.path != "" {
		_ = os.Remove(s.path)
	}
}

// Token returns the current bearer token, "" when logged out.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}

func (s *SessionStore) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var state SessionState
	if json.Unmarshal(data, &state) != nil {
		return
	}
	if state.Token != "" {
		state.Authenticated = true
		s.state = state
	}
}

// persist is best effort; a read-only disk degrades to a memory-only session.
func (s *SessionStore) persist() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}
