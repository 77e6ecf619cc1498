package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/storage"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret-pass"

// testGIF is a valid 1x1 GIF.
var testGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

var phoneSeq atomic.Int64

func init() {
	auth.Cost = bcrypt.MinCost
}

type testApp struct {
	svc      *services.Services
	sessions *auth.Sessions
	posts    *PostController
	comments *CommentController
	follows  *FollowController
	auth     *AuthController
	core     *CoreController
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	v, err := views.New()
	require.NoError(t, err)

	log := zap.NewNop()
	svc := services.New(repositories.NewStore(db), storage.NewImageStore(t.TempDir(), 1<<20))
	sessions := auth.NewSessions("test-secret", time.Hour, false)
	posts := NewPostController(svc, v, log, 1<<20)
	return &testApp{
		svc:      svc,
		sessions: sessions,
		posts:    posts,
		comments: NewCommentController(svc, posts),
		follows:  NewFollowController(svc, v, log),
		auth:     NewAuthController(svc, sessions, v, log),
		core:     NewCoreController(v, log),
	}
}

func (a *testApp) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := a.svc.Users.Register(&models.SignupForm{
		Username:  username,
		FirstName: "Test",
		LastName:  strings.ToUpper(username[:1]) + username[1:],
		Email:     username + "@example.com",
		Phone:     fmt.Sprintf("+3314020%05d", phoneSeq.Add(1)),
		Password1: testPassword,
		Password2: testPassword,
	})
	require.NoError(t, err)
	return user
}

func (a *testApp) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	form := &models.PostForm{Text: text}
	if group != nil {
		form.GroupID = &group.ID
	}
	post, err := a.svc.Posts.CreatePost(author, form)
	require.NoError(t, err)
	return post
}

func (a *testApp) group(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group, err := a.svc.Groups.Create(&models.GroupForm{Title: title, Slug: slug, Description: "about " + title})
	require.NoError(t, err)
	return group
}

// do runs handler for req as viewer, with vars as the route variables.
func do(handler http.HandlerFunc, req *http.Request, viewer *models.User, vars map[string]string) *httptest.ResponseRecorder {
	if viewer != nil {
		req = req.WithContext(auth.SetUser(req.Context(), viewer))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// multipartForm builds a multipart request. An image named by
// filename is attached when data is not nil.
func multipartForm(t *testing.T, target string, values url.Values, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if data != nil {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func idVars(id int) map[string]string {
	return map[string]string{"id": fmt.Sprint(id)}
}
