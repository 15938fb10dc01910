// Package auth issues and validates the session cookie that binds each HTTP
// request to a player. Sessions are opaque random tokens; only their hash is
// kept server-side.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	mu       sync.Mutex
	sessions map[string]Session // keyed by token hash

	cookieName string
	sessionTTL time.Duration
}

func NewService(sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		sessions:   map[string]Session{},
		cookieName: "lodyland_session",
		sessionTTL: sessionTTL,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// CreateSession logs a player in and returns the bearer token to set as the
// cookie value.
func (s *Service) CreateSession(playerID int64, now time.Time) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(s.sessionTTL)
	sess := Session{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: exp,
	}
	s.mu.Lock()
	s.sessions[sess.TokenHash] = sess
	s.mu.Unlock()
	return token, exp, nil
}

// AuthenticateRequest resolves the session cookie to a player.
func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}

	h := hashToken(cookie.Value)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[h]
	if !ok {
		return Session{}, false
	}
	if now.After(sess.ExpiresAt) {
		delete(s.sessions, h)
		return Session{}, false
	}
	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		sess.LastSeen = now
		s.sessions[h] = sess
	}
	return sess, true
}

func (s *Service) RevokeSessionForRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, hashToken(cookie.Value))
	s.mu.Unlock()
}

func (s *Service) shouldUseSecureCookie(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LODYLAND_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAPI rejects unauthenticated requests with a JSON 401 and stores the
// player id on the request context otherwise.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		ctx := withSessionContext(withPlayerContext(r.Context(), sess.PlayerID), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
