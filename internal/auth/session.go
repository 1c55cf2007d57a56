// Package auth holds the dashboard's login state: the current user, whether a login is in
// flight and the last user-visible error.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vanshika/bunqdash/internal/bunq"
	"github.com/vanshika/bunqdash/internal/domain"
)

// User-visible error messages.
const (
	MsgAuthenticationFailed = "Authentication failed"
	MsgUserInfoFailed       = "Failed to fetch user information"
)

// Client is the part of bunq.Client the session depends on.
type Client interface {
	Authenticate(ctx context.Context) bunq.AuthResult
	GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error)
	Logout() error
	HasSession() bool
}

// State is a snapshot of the session as served to the UI.
type State struct {
	User          []domain.UserEnvelope `json:"user"`
	Loading       bool                  `json:"loading"`
	Error         *string               `json:"error"`
	Authenticated bool                  `json:"isAuthenticated"`
}

// Session is built once at process start and shared by every request handler.
type Session struct {
	client Client
	logger *slog.Logger

	mu      sync.RWMutex
	user    []domain.UserEnvelope
	loading bool
	err     *string
}

// NewSession returns a logged-out, idle session.
func NewSession(client Client, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		logger: logger.With("component", "auth"),
	}
}

// Restore treats a persisted session token as proof of an earlier login and loads the user.
// Without a token the session stays logged out.
func (s *Session) Restore(ctx context.Context) {
	if !s.client.HasSession() {
		return
	}
	s.setLoading(true)
	defer s.setLoading(false)
	s.fetchUser(ctx)
}

// Login authenticates and loads the user. It reports whether the user is now logged in.
func (s *Session) Login(ctx context.Context) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	res := s.client.Authenticate(ctx)
	if !res.Success {
		s.logger.Warn("login failed", "error", res.Err)
		s.setError(MsgAuthenticationFailed)
		return false
	}
	return s.fetchUser(ctx)
}

// Logout drops the tokens and the user. The last error is kept.
func (s *Session) Logout() {
	if err := s.client.Logout(); err != nil {
		s.logger.Warn("logout could not clear tokens", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// IsAuthenticated is true iff a user is loaded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// State returns a copy of the current session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Loading:       s.loading,
		Authenticated: s.user != nil,
	}
	if s.user != nil {
		st.User = append([]domain.UserEnvelope{}, s.user...)
	}
	if s.err != nil {
		msg := *s.err
		st.Error = &msg
	}
	return st
}

func (s *Session) fetchUser(ctx context.Context) bool {
	users, err := s.client.GetUserInfo(ctx)
	if err != nil {
		s.logger.Warn("loading user failed", "error", err)
		s.setError(MsgUserInfoFailed)
		return false
	}
	if users == nil {
		users = []domain.UserEnvelope{}
	}
	s.mu.Lock()
	s.user = users
	s.mu.Unlock()
	return true
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.err = &msg
	s.mu.Unlock()
}
