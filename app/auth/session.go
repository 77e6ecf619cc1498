// Package auth handles passwords, session cookies and the viewer
// stored in a request context.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"yatube/app/models"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie.
const CookieName = "yatube_session"

// ErrNoSession is returned when a request carries no usable session.
var ErrNoSession = errors.New("auth: no valid session")

// Session is what a valid cookie identifies.
type Session struct {
	UserID  int
	Version int
}

type claims struct {
	Version int `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and reads signed session cookies. The token subject
// is the user ID; ver is the user's session version at login.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions creates a session manager. secure marks cookies
// HTTPS-only.
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a token for user and sets it as the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, user *models.User) error {
	now := time.Now()
	c := claims{
		Version: user.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the session carried by the request's cookie.
func (s *Sessions) Read(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, ErrNoSession
	}
	return s.Parse(cookie.Value)
}

// Parse verifies a token.
func (s *Sessions) Parse(raw string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return Session{}, ErrNoSession
	}
	return Session{UserID: id, Version: c.Version}, nil
}

// Current reports whether the session was issued at the user's
// present session version.
func (s Session) Current(user *models.User) bool {
	return user != nil && user.ID == s.UserID && user.SessionVersion == s.Version
}
