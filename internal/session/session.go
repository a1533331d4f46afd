// Package session holds who is signed in and the bearer token that authenticates them.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"health-portal/internal/models"
)

// Session is the explicit sign-in context. Login begins it, logout ends it.
// The zero value is an empty, signed-out session.
type Session struct {
	mu    sync.RWMutex
	user  *models.User
	token string
}

// Begin records a successful sign-in.
func (s *Session) Begin(user *models.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
}

// End clears the session.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// SetUser replaces the user, keeping the token. Used once a profile fetch resolves.
func (s *Session) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}

type persisted struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// FileStore saves a session between command invocations.
type FileStore struct {
	Path string
}

// DefaultPath is the session file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "health-portal", "session.json"), nil
}

// Load fills s from the file. A missing file leaves s signed out.
func (f FileStore) Load(s *Session) error {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Token == "" {
		return nil
	}
	s.Begin(p.User, p.Token)
	return nil
}

// Save writes s to the file, or removes the file when s is signed out.
func (f FileStore) Save(s *Session) error {
	if !s.Active() {
		err := os.Remove(f.Path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	data, err := json.Marshal(persisted{Token: s.Token(), User: s.User()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}
