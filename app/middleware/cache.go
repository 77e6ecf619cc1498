package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"yatube/app/auth"

	"github.com/dgraph-io/ristretto/v2"
)

type cachedPage struct {
	header http.Header
	body   []byte
}

// PageCache holds rendered pages for a short time.
type PageCache struct {
	cache *ristretto.Cache[string, *cachedPage]
	ttl   time.Duration
}

// NewPageCache creates a cache whose entries live for ttl.
func NewPageCache(ttl time.Duration) (*PageCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *cachedPage]{
		NumCounters: 1e4,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &PageCache{cache: cache, ttl: ttl}, nil
}

// Wait blocks until pending writes are visible.
func (c *PageCache) Wait() { c.cache.Wait() }

// Close stops the cache's background goroutines.
func (c *PageCache) Close() { c.cache.Close() }

// key includes the viewer so that logged-in navigation never leaks
// between users. Logged-in pages carry a form token bound to the
// browser's token cookie, so that cookie is part of their key.
func (c *PageCache) key(r *http.Request) string {
	viewer, token := 0, ""
	if u := auth.GetUser(r.Context()); u != nil {
		viewer = u.ID
		if cookie, err := r.Cookie(CSRFCookieName); err == nil {
			token = cookie.Value
		}
	}
	return strconv.Itoa(viewer) + "|" + token + "|" + r.URL.RequestURI()
}

// bufferedWriter passes writes through and keeps a copy.
type bufferedWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CachePage serves GET requests from the cache and stores successful
// responses for the cache TTL.
func CachePage(c *PageCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			key := c.key(r)
			if page, ok := c.cache.Get(key); ok {
				for k, v := range page.header {
					w.Header()[k] = v
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					w.Write(page.body)
				}
				return
			}

			bw := &bufferedWriter{ResponseWriter: w}
			next.ServeHTTP(bw, r)
			if bw.status != http.StatusOK || r.Method != http.MethodGet {
				return
			}
			// A fresh token cookie for a logged-in viewer must reach the
			// browser together with the page that uses it.
			if auth.GetUser(r.Context()) != nil && w.Header().Get("Set-Cookie") != "" {
				return
			}
			page := &cachedPage{header: w.Header().Clone(), body: bw.buf.Bytes()}
			page.header.Del("Set-Cookie")
			c.cache.SetWithTTL(key, page, int64(len(page.body))+1, c.ttl)
		})
	}
}
