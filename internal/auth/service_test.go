package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.AddCookie(&http.Cookie{Name: "lodyland_session", Value: token})
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewService(time.Hour)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	token, exp, err := s.CreateSession(42, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	sess, ok := s.AuthenticateRequest(requestWithCookie(token), now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, int64(42), sess.PlayerID)
}

func TestExpiredSessionRejected(t *testing.T) {
	s := NewService(time.Hour)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	token, _, err := s.CreateSession(42, now)
	require.NoError(t, err)

	_, ok := s.AuthenticateRequest(requestWithCookie(token), now.Add(2*time.Hour))
	assert.False(t, ok)

	// Expired sessions are dropped; a later in-window check still fails.
	_, ok = s.AuthenticateRequest(requestWithCookie(token), now.Add(time.Minute))
	assert.False(t, ok)
}

func TestBogusTokenRejected(t *testing.T) {
	s := NewService(time.Hour)
	_, ok := s.AuthenticateRequest(requestWithCookie("not-a-token"), time.Now())
	assert.False(t, ok)
}

func TestRevokeSession(t *testing.T) {
	s := NewService(time.Hour)
	now := time.Now()
	token, _, err := s.CreateSession(7, now)
	require.NoError(t, err)

	s.RevokeSessionForRequest(requestWithCookie(token))
	_, ok := s.AuthenticateRequest(requestWithCookie(token), now)
	assert.False(t, ok)
}

func TestRequireAPI(t *testing.T) {
	s := NewService(time.Hour)
	now := time.Now()
	token, _, err := s.CreateSession(9, now)
	require.NoError(t, err)

	var gotID int64
	h := s.RequireAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := PlayerFromContext(r.Context())
		require.True(t, ok)
		gotID = id
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookie(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), gotID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
