package middleware

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"
)

const (
	// CSRFCookieName holds the token a form must echo back.
	CSRFCookieName = "csrftoken"
	// CSRFFieldName is the hidden form field carrying the token.
	CSRFFieldName = "csrfmiddlewaretoken"
)

// CSRFConfig configures form token checks.
type CSRFConfig struct {
	// Secret derives the cookie signing key.
	Secret string
	// Secure marks the token cookie HTTPS-only.
	Secure bool
	// TrustedOrigins may submit forms from another host. Entries are
	// hosts or origins such as https://yatube.example.
	TrustedOrigins []string
}

// CSRF requires a valid token on every unsafe request and sends
// failures to deny. Requests that did not arrive over TLS, directly or
// through a proxy, skip the strict Referer check; the token is still
// required.
func CSRF(cfg CSRFConfig, deny http.Handler) (func(http.Handler) http.Handler, error) {
	hosts := make([]string, 0, len(cfg.TrustedOrigins))
	for _, origin := range cfg.TrustedOrigins {
		host, err := originHost(origin)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, host)
	}

	key := sha256.Sum256([]byte("yatube.csrf:" + cfg.Secret))
	opts := []csrf.Option{
		csrf.CookieName(CSRFCookieName),
		csrf.FieldName(CSRFFieldName),
		csrf.Path("/"),
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(hosts),
	}
	if deny != nil {
		opts = append(opts, csrf.ErrorHandler(deny))
	}
	protect := csrf.Protect(key[:], opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}, nil
}

// originHost reduces an origin to the host form the token check
// compares against.
func originHost(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if !strings.Contains(origin, "://") {
		if origin == "" || strings.ContainsAny(origin, "/?#") {
			return "", fmt.Errorf("trusted origin %q: not a host", origin)
		}
		return origin, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("trusted origin %q: %w", origin, err)
	}
	if u.Host == "" || (u.Path != "" && u.Path != "/") {
		return "", fmt.Errorf("trusted origin %q: want scheme://host[:port]", origin)
	}
	return u.Host, nil
}
