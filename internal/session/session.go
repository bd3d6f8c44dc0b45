// Package session holds runtime state for the active operator.
package session

import (
	"crypto/subtle"
	"sync"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Authenticated bool `json:"authenticated"`
	InputEnabled  bool `json:"inputEnabled"`
	PasswordMode  bool `json:"passwordMode"`
}

// Session holds runtime state for the active operator.
type Session struct {
	mu            sync.RWMutex
	password      string
	passwordMode  bool
	authenticated bool
	inputEnabled  bool
}

// New returns a password-protected session.
func New(password string) *Session {
	return &Session{
		password:     password,
		passwordMode: true,
		inputEnabled: true,
	}
}

// NewOpen returns a session that needs no login.
func NewOpen() *Session {
	return &Session{inputEnabled: true}
}

// PasswordMode reports whether a login is required.
func (s *Session) PasswordMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passwordMode
}

// Authenticate validates the password and marks the session as authenticated.
func (s *Session) Authenticate(pass string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.passwordMode {
		return true
	}
	if pass != "" && subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) == 1 {
		s.authenticated = true
		return true
	}
	s.authenticated = false
	return false
}

// Logout clears authentication state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// IsAuthenticated reports whether requests may use the control surface.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.passwordMode || s.authenticated
}

// SetInputEnabled toggles whether pointer input reaches the knob.
func (s *Session) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputEnabled = enabled
}

// InputEnabled reports whether pointer input reaches the knob.
func (s *Session) InputEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputEnabled
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: !s.passwordMode || s.authenticated,
		InputEnabled:  s.inputEnabled,
		PasswordMode:  s.passwordMode,
	}
}
