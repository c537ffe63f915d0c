// Package auth mints and checks bearer-token sessions. The identity
// provider itself is external: callers present an already-authenticated
// identity assertion together with the provider client secret from the
// configuration file.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamboard-dev/teamboard-server/internal/database"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidAssertion = errors.New("invalid identity assertion")
)

type contextKey struct{}

// Assertion is the payload the identity provider callback hands over
// after a successful external login.
type Assertion struct {
	ClientSecret string `json:"clientSecret"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
}

type Manager struct {
	store        database.SessionStore
	clientSecret string
	sessionTTL   time.Duration
}

func NewManager(store database.SessionStore, clientSecret string, sessionTTL time.Duration) *Manager {
	return &Manager{
		store:        store,
		clientSecret: clientSecret,
		sessionTTL:   sessionTTL,
	}
}

func (m *Manager) Login(assertion Assertion) (*database.Session, error) {
	if assertion.ClientSecret != m.clientSecret {
		return nil, ErrInvalidAssertion
	}
	if assertion.UserID == "" || assertion.UserName == "" {
		return nil, ErrInvalidAssertion
	}

	session := &database.Session{
		Token:     uuid.NewString(),
		UserID:    assertion.UserID,
		UserName:  assertion.UserName,
		ExpiresAt: time.Now().Add(m.sessionTTL),
	}
	if err := m.store.SaveSession(session); err != nil {
		return nil, err
	}
	logger.InfoF("User %s logged in", session.UserID)
	return session, nil
}

func (m *Manager) Logout(token string) error {
	return m.store.DeleteSession(token)
}

// Authenticate resolves the Authorization header to a live session.
func (m *Manager) Authenticate(r *http.Request) (*database.Session, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, ErrUnauthorized
	}

	session, err := m.store.FindSession(token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if session.Expired() {
		_ = m.store.DeleteSession(token)
		return nil, ErrUnauthorized
	}
	return session, nil
}

// Middleware rejects unauthenticated requests with 401 and stashes the
// session in the request context for the wrapped handler.
func (m *Manager) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Authenticate(r)
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				logger.ErrorF("Fail to authenticate request, details: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, session)))
	}
}

// SessionFrom returns the session stored by Middleware, or nil.
func SessionFrom(ctx context.Context) *database.Session {
	session, _ := ctx.Value(contextKey{}).(*database.Session)
	return session
}
