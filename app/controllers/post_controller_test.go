package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"yatube/app/errs"
	"yatube/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostControllerFeeds(t *testing.T) {
	app := setupApp(t)
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")
	cats := app.group(t, "Cats", "cats")
	app.post(t, alice, "alice in cats", cats)
	app.post(t, bob, "bob without group", nil)

	t.Run("index lists every post", func(t *testing.T) {
		w := do(app.posts.Index, httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "alice in cats")
		assert.Contains(t, body, "bob without group")
		assert.Contains(t, body, `href="/auth/login/"`)
	})

	t.Run("index shows the viewer in the nav", func(t *testing.T) {
		w := do(app.posts.Index, httptest.NewRequest(http.MethodGet, "/", nil), bob, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `href="/profile/bob/"`)
	})

	t.Run("group page only has group posts", func(t *testing.T) {
		w := do(app.posts.GroupPosts, httptest.NewRequest(http.MethodGet, "/group/cats/", nil), nil,
			map[string]string{"slug": "cats"})

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "alice in cats")
		assert.NotContains(t, body, "bob without group")
		assert.Contains(t, body, "Posts of the Cats group")
	})

	t.Run("unknown group is not found", func(t *testing.T) {
		w := do(app.posts.GroupPosts, httptest.NewRequest(http.MethodGet, "/group/dogs/", nil), nil,
			map[string]string{"slug": "dogs"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "/group/dogs/")
	})

	t.Run("profile shows counts and a follow button", func(t *testing.T) {
		w := do(app.posts.Profile, httptest.NewRequest(http.MethodGet, "/profile/alice/", nil), bob,
			map[string]string{"username": "alice"})

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "All posts by Test Alice")
		assert.Contains(t, body, "Posts: 1")
		assert.Contains(t, body, `action="/profile/alice/follow/"`)
		assert.NotContains(t, body, "bob without group")
	})

	t.Run("profile offers unfollow to a follower", func(t *testing.T) {
		require.NoError(t, app.svc.Follows.Follow(bob.ID, alice.ID))
		t.Cleanup(func() { _ = app.svc.Follows.Unfollow(bob.ID, alice.ID) })

		w := do(app.posts.Profile, httptest.NewRequest(http.MethodGet, "/profile/alice/", nil), bob,
			map[string]string{"username": "alice"})

		body := w.Body.String()
		assert.Contains(t, body, "Followers: 1")
		assert.Contains(t, body, `action="/profile/alice/unfollow/"`)
	})

	t.Run("own profile has no follow button", func(t *testing.T) {
		w := do(app.posts.Profile, httptest.NewRequest(http.MethodGet, "/profile/alice/", nil), alice,
			map[string]string{"username": "alice"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `action="/profile/alice/follow/"`)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		w := do(app.posts.Profile, httptest.NewRequest(http.MethodGet, "/profile/nobody/", nil), nil,
			map[string]string{"username": "nobody"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostControllerPagination(t *testing.T) {
	app := setupApp(t)
	author := app.register(t, "writer")
	for i := 1; i <= 13; i++ {
		app.post(t, author, fmt.Sprintf("numbered post %02d", i), nil)
	}

	tests := []struct {
		name     string
		target   string
		contains string
		missing  string
	}{
		{"first page", "/", "numbered post 13", "numbered post 03"},
		{"second page", "/?page=2", "numbered post 03", "numbered post 13"},
		{"past the end", "/?page=9", "numbered post 01", "numbered post 13"},
		{"garbage page", "/?page=abc", "numbered post 13", "numbered post 01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(app.posts.Index, httptest.NewRequest(http.MethodGet, tt.target, nil), nil, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
			assert.NotContains(t, w.Body.String(), tt.missing)
		})
	}
}

func TestPostControllerShow(t *testing.T) {
	app := setupApp(t)
	author := app.register(t, "author")
	reader := app.register(t, "reader")
	post := app.post(t, author, "a post with details", nil)

	t.Run("author sees edit controls", func(t *testing.T) {
		w := do(app.posts.Show, httptest.NewRequest(http.MethodGet, postURL(post.ID), nil), author, idVars(post.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf("/posts/%d/edit/", post.ID))
		assert.Contains(t, w.Body.String(), "Add a comment")
	})

	t.Run("others do not", func(t *testing.T) {
		w := do(app.posts.Show, httptest.NewRequest(http.MethodGet, postURL(post.ID), nil), reader, idVars(post.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), fmt.Sprintf("/posts/%d/edit/", post.ID))
	})

	t.Run("anonymous gets no comment form", func(t *testing.T) {
		w := do(app.posts.Show, httptest.NewRequest(http.MethodGet, postURL(post.ID), nil), nil, idVars(post.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "a post with details")
		assert.NotContains(t, w.Body.String(), "Add a comment")
	})

	t.Run("missing post", func(t *testing.T) {
		w := do(app.posts.Show, httptest.NewRequest(http.MethodGet, "/posts/999/", nil), nil, idVars(999))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("overflowing ID", func(t *testing.T) {
		w := do(app.posts.Show, httptest.NewRequest(http.MethodGet, "/posts/99999999999999999999/", nil), nil,
			map[string]string{"id": "99999999999999999999"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostControllerCreate(t *testing.T) {
	app := setupApp(t)
	author := app.register(t, "creator")
	group := app.group(t, "Group", "g-slug")

	t.Run("form lists groups", func(t *testing.T) {
		w := do(app.posts.New, httptest.NewRequest(http.MethodGet, "/create/", nil), author, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(`<option value="%d"`, group.ID))
		assert.Contains(t, w.Body.String(), "New post")
	})

	t.Run("valid post redirects to the profile", func(t *testing.T) {
		req := postForm("/create/", url.Values{"text": {"fresh text"}, "group": {fmt.Sprint(group.ID)}})
		w := do(app.posts.Create, req, author, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/creator/", w.Header().Get("Location"))

		feed, err := app.svc.Feeds.Assemble(nil, services.GroupPosts("g-slug"), "")
		require.NoError(t, err)
		require.Len(t, feed.Page.Items, 1)
		assert.Equal(t, "fresh text", feed.Page.Items[0].Text)
		assert.Equal(t, author.ID, feed.Page.Items[0].AuthorID)
	})

	t.Run("image upload", func(t *testing.T) {
		req := multipartForm(t, "/create/", url.Values{"text": {"with picture"}}, "pixel.gif", testGIF)
		w := do(app.posts.Create, req, author, nil)
		require.Equal(t, http.StatusFound, w.Code)

		feed, err := app.svc.Feeds.Assemble(nil, services.AuthorPosts("creator"), "")
		require.NoError(t, err)
		assert.Equal(t, "with picture", feed.Page.Items[0].Text)
		assert.True(t, strings.HasPrefix(feed.Page.Items[0].Image, "posts/"))
	})

	tests := []struct {
		name    string
		req     func() *http.Request
		message string
	}{
		{
			name:    "empty text",
			req:     func() *http.Request { return postForm("/create/", url.Values{"text": {"  "}}) },
			message: "This field is required.",
		},
		{
			name: "unknown group",
			req: func() *http.Request {
				return postForm("/create/", url.Values{"text": {"x"}, "group": {"4242"}})
			},
			message: "Select a valid choice.",
		},
		{
			name: "group that is not a number",
			req: func() *http.Request {
				return postForm("/create/", url.Values{"text": {"x"}, "group": {"cats"}})
			},
			message: "Select a valid choice.",
		},
		{
			name: "file that is not an image",
			req: func() *http.Request {
				return multipartForm(t, "/create/", url.Values{"text": {"x"}}, "notes.txt", []byte("plain text"))
			},
			message: "Upload a valid image.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(app.posts.Create, tt.req(), author, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), `class="error"`)
		})
	}

	t.Run("anonymous create goes to login", func(t *testing.T) {
		w := do(app.posts.Create, postForm("/create/", url.Values{"text": {"x"}}), nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
	})
}

func TestPostControllerEdit(t *testing.T) {
	app := setupApp(t)
	author := app.register(t, "owner")
	stranger := app.register(t, "stranger")
	post := app.post(t, author, "original text", nil)
	editURL := fmt.Sprintf("/posts/%d/edit/", post.ID)

	t.Run("author gets the filled form", func(t *testing.T) {
		w := do(app.posts.EditForm, httptest.NewRequest(http.MethodGet, editURL, nil), author, idVars(post.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "original text")
		assert.Contains(t, w.Body.String(), "Edit post")
	})

	t.Run("stranger form redirects to the post", func(t *testing.T) {
		w := do(app.posts.EditForm, httptest.NewRequest(http.MethodGet, editURL, nil), stranger, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))
	})

	t.Run("anonymous form goes to login", func(t *testing.T) {
		w := do(app.posts.EditForm, httptest.NewRequest(http.MethodGet, editURL, nil), nil, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), LoginPath+"?next="))
	})

	t.Run("stranger edit changes nothing", func(t *testing.T) {
		w := do(app.posts.Edit, postForm(editURL, url.Values{"text": {"hijacked"}}), stranger, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))

		got, err := app.svc.Posts.GetPost(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original text", got.Text)
	})

	t.Run("invalid edit re-renders", func(t *testing.T) {
		w := do(app.posts.Edit, postForm(editURL, url.Values{"text": {""}}), author, idVars(post.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
	})

	t.Run("author edit saves", func(t *testing.T) {
		w := do(app.posts.Edit, postForm(editURL, url.Values{"text": {"edited text"}}), author, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))

		got, err := app.svc.Posts.GetPost(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited text", got.Text)
		assert.Equal(t, author.ID, got.AuthorID)
	})

	t.Run("missing post", func(t *testing.T) {
		w := do(app.posts.Edit, postForm("/posts/404/edit/", url.Values{"text": {"x"}}), author, idVars(404))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostControllerDelete(t *testing.T) {
	app := setupApp(t)
	author := app.register(t, "owner")
	stranger := app.register(t, "stranger")
	post := app.post(t, author, "short lived", nil)
	target := fmt.Sprintf("/posts/%d/delete/", post.ID)

	t.Run("stranger is sent back", func(t *testing.T) {
		w := do(app.posts.Delete, postForm(target, nil), stranger, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))
		_, err := app.svc.Posts.GetPost(post.ID)
		assert.NoError(t, err)
	})

	t.Run("author deletes", func(t *testing.T) {
		w := do(app.posts.Delete, postForm(target, nil), author, idVars(post.ID))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/owner/", w.Header().Get("Location"))
		_, err := app.svc.Posts.GetPost(post.ID)
		assert.ErrorIs(t, err, errs.NotFound)
	})
}
