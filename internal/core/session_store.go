package core

import (
	"log/slog"
	"sync"

	"floatchat.com/core/internal/store"
	"floatchat.com/core/internal/utils"
)

// SessionState is the read-only view of the session handed to presentation.
// Authenticated is true exactly when User is present.
type SessionState struct {
	Authenticated bool        `json:"authenticated"`
	User          *store.User `json:"user,omitempty"`
}

// SessionStore holds authentication status and the current user identity.
// Change listeners are invoked outside the lock so they may freely read back.
type SessionStore struct {
	mu            sync.Mutex
	authenticated bool
	user          *store.User
	listeners     []func(authenticated bool)
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Subscribe registers a listener called after every login/logout transition.
func (s *SessionStore) Subscribe(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Login authenticates with the demo credential rule: any non-empty email and
// password pair succeeds. On failure nothing changes and the caller surfaces
// the invalid-credentials reason. This intentionally stands in for real
// credential verification.
func (s *SessionStore) Login(email, password string) bool {
	if email == "" || password == "" {
		slog.Info("login rejected", "reason", "empty email or password")
		return false
	}

	user := utils.IdentityForEmail(email)

	s.mu.Lock()
	s.authenticated = true
	s.user = &user
	s.mu.Unlock()

	slog.Info("login succeeded", "email", email, "display_name", user.DisplayName)
	s.fireListeners(true)
	return true
}

// Logout unconditionally clears the session.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.mu.Unlock()

	slog.Info("logged out")
	s.fireListeners(false)
}

func (s *SessionStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Snapshot returns a copy of the current session state.
func (s *SessionStore) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{Authenticated: s.authenticated}
	if s.user != nil {
		u := *s.user
		state.User = &u
	}
	return state
}

func (s *SessionStore) fireListeners(authenticated bool) {
	s.mu.Lock()
	listeners := make([]func(bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}
