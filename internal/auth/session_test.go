package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard-dev/teamboard-server/internal/database"
)

func TestLogin(t *testing.T) {
	store := database.NewMemoryStore()
	mgr := NewManager(store, "secret", time.Hour)

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   error
	}{
		{
			name:      "valid assertion",
			assertion: Assertion{ClientSecret: "secret", UserID: "u1", UserName: "Alice"},
		},
		{
			name:      "wrong client secret",
			assertion: Assertion{ClientSecret: "nope", UserID: "u1", UserName: "Alice"},
			wantErr:   ErrInvalidAssertion,
		},
		{
			name:      "missing identity",
			assertion: Assertion{ClientSecret: "secret"},
			wantErr:   ErrInvalidAssertion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := mgr.Login(tt.assertion)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, "u1", session.UserID)
			assert.False(t, session.Expired())
		})
	}
}

func TestAuthenticate(t *testing.T) {
	store := database.NewMemoryStore()
	mgr := NewManager(store, "secret", time.Hour)

	session, err := mgr.Login(Assertion{ClientSecret: "secret", UserID: "u1", UserName: "Alice"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/topics", nil)
	r.Header.Set("Authorization", "Bearer "+session.Token)
	got, err := mgr.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	r = httptest.NewRequest("GET", "/api/topics", nil)
	_, err = mgr.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	r = httptest.NewRequest("GET", "/api/topics", nil)
	r.Header.Set("Authorization", "Bearer bogus")
	_, err = mgr.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	store := database.NewMemoryStore()
	mgr := NewManager(store, "secret", -time.Minute)

	session, err := mgr.Login(Assertion{ClientSecret: "secret", UserID: "u1", UserName: "Alice"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/topics", nil)
	r.Header.Set("Authorization", "Bearer "+session.Token)
	_, err = mgr.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// expired session is purged on first use
	_, err = store.FindSession(session.Token)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLogout(t *testing.T) {
	store := database.NewMemoryStore()
	mgr := NewManager(store, "secret", time.Hour)

	session, err := mgr.Login(Assertion{ClientSecret: "secret", UserID: "u1", UserName: "Alice"})
	require.NoError(t, err)
	require.NoError(t, mgr.Logout(session.Token))

	r := httptest.NewRequest("GET", "/api/topics", nil)
	r.Header.Set("Authorization", "Bearer "+session.Token)
	_, err = mgr.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
