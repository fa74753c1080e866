// Package session tracks the authentication state of the client and turns
// its changes into explicit transition edges. Handlers fire once per edge;
// a result that leaves the state where it was fires nothing.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopfront.io/storefront/api"
	"shopfront.io/storefront/models"
	"shopfront.io/storefront/models/enum"
)

// AuthClient is the manager's view of the auth API.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.User, bool, error)
	Signup(ctx context.Context, params api.SignupParams) error
}

// TransitionHandler observes session edges. The cart engine registers here
// to run its migration on the edge into an authenticated session.
type TransitionHandler func(ctx context.Context, state enum.SessionState) error

// Manager owns the session state machine.
type Manager struct {
	auth   AuthClient
	logger *zap.Logger

	mu      sync.RWMutex
	state   enum.SessionState
	user    models.User
	handler TransitionHandler
}

func NewManager(auth AuthClient, logger *zap.Logger) *Manager {
	return &Manager{
		auth:   auth,
		logger: logger,
		state:  enum.SessionStateAnonymous,
	}
}

// OnTransition registers the single transition handler. It must be set
// before Restore, Login, or Logout run.
func (m *Manager) OnTransition(handler TransitionHandler) {
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
}

// State returns the current session state.
func (m *Manager) State() enum.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the signed-in user; the second return is false while
// anonymous.
func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.state == enum.SessionStateAuthenticated
}

// Restore rebuilds the session from the credential in the cookie jar, as
// on app load. A missing or expired credential leaves the session
// anonymous without error. Restore populates initial state and fires no
// transition edge: consumers start from the restored state instead.
func (m *Manager) Restore(ctx context.Context) error {
	user, ok, err := m.auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.state = enum.SessionStateAuthenticated
		m.user = user
	} else {
		m.state = enum.SessionStateAnonymous
		m.user = models.User{}
	}
	return nil
}

// Login authenticates and fires the anonymous-to-authenticated edge. A
// handler failure (an incomplete cart migration) is surfaced, but the
// session stays authenticated: the login itself succeeded.
func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	m.logger.Info("Signed in", zap.Uint64("user_id", user.ID))
	if err = m.transition(ctx, enum.SessionStateAuthenticated, user); err != nil {
		return user, err
	}
	return user, nil
}

// Logout ends the server-side session and fires the edge back to
// anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.logger.Info("Signed out")
	return m.transition(ctx, enum.SessionStateAnonymous, models.User{})
}

// Signup registers a new account. It does not sign the user in; the
// session state is untouched.
func (m *Manager) Signup(ctx context.Context, params api.SignupParams) error {
	if err := m.auth.Signup(ctx, params); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

func (m *Manager) transition(ctx context.Context, next enum.SessionState, user models.User) error {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.user = user
	handler := m.handler
	m.mu.Unlock()

	if prev == next || handler == nil {
		return nil
	}
	return handler(ctx, next)
}
