package middleware

import (
	"net/http"
	"net/url"

	"yatube/app/auth"
	"yatube/app/models"

	"go.uber.org/zap"
)

// UserLoader resolves the user named by a session.
type UserLoader interface {
	GetByID(id int) (*models.User, error)
}

// Authenticate puts the session's user, if any, into the request
// context. Stale or forged sessions are cleared and the request
// continues anonymously.
func Authenticate(sessions *auth.Sessions, users UserLoader, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(auth.CookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}
			session, err := sessions.Read(r)
			if err != nil {
				sessions.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetByID(session.UserID)
			if err != nil {
				log.Debug("session user not loaded", zap.Int("user_id", session.UserID), zap.Error(err))
				sessions.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			if !session.Current(user) {
				log.Debug("revoked session", zap.Int("user_id", user.ID))
				sessions.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
		})
	}
}

// RequireLogin redirects anonymous requests to loginPath with the
// original URL in the next parameter.
func RequireLogin(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.GetUser(r.Context()) == nil {
				http.Redirect(w, r, LoginURL(loginPath, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginURL builds loginPath?next=target.
func LoginURL(loginPath, target string) string {
	return loginPath + "?" + url.Values{"next": {target}}.Encode()
}
