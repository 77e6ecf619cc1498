package routes

import (
	"bytes"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/middleware"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/storage"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var phoneSeq atomic.Int64

var testGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

func init() {
	auth.Cost = bcrypt.MinCost
}

type site struct {
	router   *mux.Router
	svc      *services.Services
	sessions *auth.Sessions

	// token and tokenCookie let test requests pass the form token check
	// the way a browser that loaded a form does.
	token       string
	tokenCookie *http.Cookie
}

var tokenField = regexp.MustCompile(`name="` + middleware.CSRFFieldName + `" value="([^"]+)"`)

func setupTestRouter(t *testing.T, tweak func(*Deps)) *site {
	t.Helper()
	db, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	v, err := views.New()
	require.NoError(t, err)

	mediaDir := t.TempDir()
	deps := Deps{
		Services:  services.New(repositories.NewStore(db), storage.NewImageStore(mediaDir, 1<<20)),
		Sessions:  auth.NewSessions("routes-secret", time.Hour, false),
		Views:     v,
		Logger:    zap.NewNop(),
		MediaDir:  mediaDir,
		MaxUpload: 1 << 20,
		CSRF:      middleware.CSRFConfig{Secret: "routes-secret"},
	}
	if tweak != nil {
		tweak(&deps)
	}
	router, err := SetupRoutes(deps)
	require.NoError(t, err)
	s := &site{router: router, svc: deps.Services, sessions: deps.Sessions}
	s.token, s.tokenCookie = s.formToken(t)
	return s
}

// formToken loads the login form and returns its token and the cookie
// the token is bound to.
func (s *site) formToken(t *testing.T) (string, *http.Cookie) {
	t.Helper()
	w := s.serve(get("/auth/login/"))
	require.Equal(t, http.StatusOK, w.Code)
	m := tokenField.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "login form has no token field")
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			return html.UnescapeString(m[1]), c
		}
	}
	t.Fatal("no token cookie set")
	return "", nil
}

func (s *site) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := s.svc.Users.Register(&models.SignupForm{
		Username:  username,
		FirstName: "Route",
		LastName:  "Tester",
		Email:     username + "@example.com",
		Phone:     fmt.Sprintf("+4930120%05d", phoneSeq.Add(1)),
		Password1: "secret-pass",
		Password2: "secret-pass",
	})
	require.NoError(t, err)
	return user
}

// cookie returns a session cookie for user.
func (s *site) cookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, s.sessions.Issue(w, user))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (s *site) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// submit sends a form request carrying a valid token.
func (s *site) submit(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req.Header.Set("X-CSRF-Token", s.token)
	return s.serve(req, append(cookies, s.tokenCookie)...)
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func post(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPublicRoutes(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := s.register(t, "author")
	group, err := s.svc.Groups.Create(&models.GroupForm{Title: "Group", Slug: "g-slug", Description: "d"})
	require.NoError(t, err)
	p, err := s.svc.Posts.CreatePost(author, &models.PostForm{Text: "public text", GroupID: &group.ID})
	require.NoError(t, err)

	tests := []struct {
		target string
		status int
	}{
		{"/", http.StatusOK},
		{"/group/g-slug/", http.StatusOK},
		{"/group/unknown/", http.StatusNotFound},
		{"/profile/author/", http.StatusOK},
		{"/profile/unknown/", http.StatusNotFound},
		{fmt.Sprintf("/posts/%d/", p.ID), http.StatusOK},
		{"/posts/999/", http.StatusNotFound},
		{"/posts/abc/", http.StatusNotFound},
		{"/auth/signup/", http.StatusOK},
		{"/auth/login/", http.StatusOK},
		{"/unexisting_page/", http.StatusNotFound},
		{"/static/style.css", http.StatusOK},
		{"/media/", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := s.serve(get(tt.target), nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("missing trailing slash redirects", func(t *testing.T) {
		w := s.serve(get("/group/g-slug"), nil)
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/group/g-slug/", w.Header().Get("Location"))
	})

	t.Run("404 page is rendered for unknown routes", func(t *testing.T) {
		w := s.serve(get("/unexisting_page/"), s.cookie(t, author))
		assert.Contains(t, w.Body.String(), "/unexisting_page/")
		assert.Contains(t, w.Body.String(), `href="/profile/author/"`)
	})
}

func TestPrivateRoutesRedirectAnonymous(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := s.register(t, "author")
	p, err := s.svc.Posts.CreatePost(author, &models.PostForm{Text: "text"})
	require.NoError(t, err)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/create/"},
		{http.MethodPost, "/create/"},
		{http.MethodGet, "/follow/"},
		{http.MethodGet, fmt.Sprintf("/posts/%d/edit/", p.ID)},
		{http.MethodPost, fmt.Sprintf("/posts/%d/edit/", p.ID)},
		{http.MethodPost, fmt.Sprintf("/posts/%d/delete/", p.ID)},
		{http.MethodPost, fmt.Sprintf("/posts/%d/comment/", p.ID)},
		{http.MethodPost, "/profile/author/follow/"},
		{http.MethodPost, "/profile/author/unfollow/"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			w := s.submit(req)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(tt.target), w.Header().Get("Location"))
		})
	}
}

func TestSessionFlow(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.register(t, "member")

	w := s.submit(post("/auth/login/", url.Values{
		"username": {"member"},
		"password": {"secret-pass"},
		"next":     {"/create/"},
	}))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	w = s.serve(get("/create/"), session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New post")

	t.Run("forged session is dropped", func(t *testing.T) {
		forged := &http.Cookie{Name: auth.CookieName, Value: session.Value + "x"}
		w := s.serve(get("/create/"), forged)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), auth.CookieName+"=;")
	})

	t.Run("logout", func(t *testing.T) {
		w := s.submit(post("/auth/logout/", nil), session)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "You have logged out")
	})

	t.Run("copied cookie is revoked by logout", func(t *testing.T) {
		w := s.serve(get("/create/"), session)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
		assert.Contains(t, w.Header().Get("Set-Cookie"), auth.CookieName+"=;")
	})

	t.Run("new login works after logout", func(t *testing.T) {
		w := s.submit(post("/auth/login/", url.Values{
			"username": {"member"},
			"password": {"secret-pass"},
		}))
		require.Equal(t, http.StatusFound, w.Code)
		var fresh *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.CookieName {
				fresh = c
			}
		}
		require.NotNil(t, fresh)

		w = s.serve(get("/create/"), fresh)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthorizedFlow(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := s.register(t, "author")
	reader := s.register(t, "reader")
	authorCookie := s.cookie(t, author)
	readerCookie := s.cookie(t, reader)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "post with an image"))
	fw, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = fw.Write(testGIF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.submit(req, authorCookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/author/", w.Header().Get("Location"))

	feed, err := s.svc.Feeds.Assemble(nil, services.AuthorPosts("author"), "")
	require.NoError(t, err)
	require.Len(t, feed.Page.Items, 1)
	created := feed.Page.Items[0]
	require.NotEmpty(t, created.Image)

	t.Run("image is served from media", func(t *testing.T) {
		w := s.serve(get("/media/"+created.Image), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testGIF, w.Body.Bytes())
	})

	t.Run("image is shown on every feed", func(t *testing.T) {
		for _, target := range []string{"/", "/profile/author/", fmt.Sprintf("/posts/%d/", created.ID)} {
			w := s.serve(get(target), nil)
			assert.Contains(t, w.Body.String(), "/media/"+created.Image, target)
		}
	})

	t.Run("reader cannot edit", func(t *testing.T) {
		target := fmt.Sprintf("/posts/%d/edit/", created.ID)
		w := s.serve(get(target), readerCookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, fmt.Sprintf("/posts/%d/", created.ID), w.Header().Get("Location"))
	})

	t.Run("reader comments", func(t *testing.T) {
		target := fmt.Sprintf("/posts/%d/comment/", created.ID)
		w := s.submit(post(target, url.Values{"text": {"first!"}}), readerCookie)
		assert.Equal(t, http.StatusFound, w.Code)

		w = s.serve(get(fmt.Sprintf("/posts/%d/", created.ID)), nil)
		assert.Contains(t, w.Body.String(), "first!")
	})

	t.Run("reader follows and sees the post", func(t *testing.T) {
		w := s.submit(post("/profile/author/follow/", nil), readerCookie)
		assert.Equal(t, http.StatusFound, w.Code)

		w = s.serve(get("/follow/"), readerCookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "post with an image")

		w = s.serve(get("/follow/"), authorCookie)
		assert.NotContains(t, w.Body.String(), "post with an image")
	})

	t.Run("author deletes", func(t *testing.T) {
		w := s.submit(post(fmt.Sprintf("/posts/%d/delete/", created.ID), nil), authorCookie)
		assert.Equal(t, http.StatusFound, w.Code)

		w = s.serve(get(fmt.Sprintf("/posts/%d/", created.ID)), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = s.serve(get("/media/"+created.Image), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFormsNeedToken(t *testing.T) {
	s := setupTestRouter(t, nil)
	victim := s.register(t, "victim")
	target := s.register(t, "target")
	session := s.cookie(t, victim)

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"create without token", func() *http.Request {
			return post("/create/", url.Values{"text": {"forged"}})
		}},
		{"follow from another site", func() *http.Request {
			req := post("/profile/target/follow/", nil)
			req.Header.Set("Referer", "https://evil.example/page")
			return req
		}},
		{"token from another browser", func() *http.Request {
			req := post("/profile/target/follow/", nil)
			req.Header.Set("X-CSRF-Token", s.token)
			return req
		}},
		{"forged token", func() *http.Request {
			req := post("/profile/target/follow/", url.Values{middleware.CSRFFieldName: {"forged"}})
			req.AddCookie(s.tokenCookie)
			return req
		}},
		{"logout without token", func() *http.Request {
			return post("/auth/logout/", nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.serve(tt.req(), session)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "Request rejected")
		})
	}

	feed, err := s.svc.Feeds.Assemble(nil, services.AllPosts(), "")
	require.NoError(t, err)
	assert.Empty(t, feed.Page.Items)
	following, err := s.svc.Follows.IsFollowing(victim.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, following)

	t.Run("token from the form passes", func(t *testing.T) {
		w := s.serve(get("/profile/target/"), session, s.tokenCookie)
		require.Equal(t, http.StatusOK, w.Code)
		m := tokenField.FindStringSubmatch(w.Body.String())
		require.Len(t, m, 2)

		req := post("/profile/target/follow/", url.Values{middleware.CSRFFieldName: {html.UnescapeString(m[1])}})
		w = s.serve(req, session, s.tokenCookie)
		assert.Equal(t, http.StatusFound, w.Code)

		following, err := s.svc.Follows.IsFollowing(victim.ID, target.ID)
		require.NoError(t, err)
		assert.True(t, following)
	})

	t.Run("every form carries a token", func(t *testing.T) {
		p, err := s.svc.Posts.CreatePost(victim, &models.PostForm{Text: "mine"})
		require.NoError(t, err)
		pages := []string{
			"/auth/login/",
			"/auth/signup/",
			"/create/",
			fmt.Sprintf("/posts/%d/", p.ID),
			fmt.Sprintf("/posts/%d/edit/", p.ID),
			"/profile/target/",
		}
		for _, page := range pages {
			w := s.serve(get(page), session, s.tokenCookie)
			require.Equal(t, http.StatusOK, w.Code, page)
			body := w.Body.String()
			assert.Equal(t, strings.Count(body, "<form"), len(tokenField.FindAllString(body, -1)), page)
		}
	})
}

func TestTrailingSlash(t *testing.T) {
	s := setupTestRouter(t, nil)
	user := s.register(t, "writer")
	session := s.cookie(t, user)

	tests := []struct {
		name     string
		req      *http.Request
		withForm bool
		status   int
		location string
	}{
		{"get is moved", get("/profile/writer?page=2"), false, http.StatusMovedPermanently, "/profile/writer/?page=2"},
		{"post keeps its method", post("/create", url.Values{"text": {"hi"}}), true, http.StatusPermanentRedirect, "/create/"},
		{"post without token", post("/create", url.Values{"text": {"hi"}}), false, http.StatusForbidden, ""},
		{"no route with a slash either", get("/nowhere"), false, http.StatusNotFound, ""},
		{"method without a route", get("/posts/1/delete"), false, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.withForm {
				w = s.submit(tt.req, session)
			} else {
				w = s.serve(tt.req, session)
			}
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestIndexIsCached(t *testing.T) {
	cache, err := middleware.NewPageCache(time.Minute)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	s := setupTestRouter(t, func(d *Deps) { d.PageCache = cache })
	author := s.register(t, "author")
	_, err = s.svc.Posts.CreatePost(author, &models.PostForm{Text: "before caching"})
	require.NoError(t, err)

	first := s.serve(get("/"), nil)
	require.Equal(t, http.StatusOK, first.Code)
	cache.Wait()

	_, err = s.svc.Posts.CreatePost(author, &models.PostForm{Text: "after caching"})
	require.NoError(t, err)

	second := s.serve(get("/"), nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.NotContains(t, second.Body.String(), "after caching")

	other := s.serve(get("/profile/author/"), nil)
	assert.Contains(t, other.Body.String(), "after caching")
}

func TestLoginIsRateLimited(t *testing.T) {
	s := setupTestRouter(t, func(d *Deps) { d.LoginLimiter = middleware.NewRateLimiter(1, 2) })
	s.register(t, "member")

	attempt := func() int {
		w := s.submit(post("/auth/login/", url.Values{"username": {"member"}, "password": {"nope"}}))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, attempt())
	assert.Equal(t, http.StatusOK, attempt())
	assert.Equal(t, http.StatusTooManyRequests, attempt())

	w := s.serve(get("/auth/login/"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoListing(t *testing.T) {
	files := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := noListing(files)

	for target, status := range map[string]int{
		"/posts/":      http.StatusNotFound,
		"/posts/a.gif": http.StatusTeapot,
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, status, w.Code, target)
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(":8000", http.NotFoundHandler())
	assert.Equal(t, ":8000", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
