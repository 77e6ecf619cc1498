package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

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

type testEnv struct {
	*Services
	store  *repositories.Store
	images *storage.ImageStore
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	db, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repositories.NewStore(db)
	images := storage.NewImageStore(t.TempDir(), 1<<20)
	return &testEnv{Services: New(store, images), store: store, images: images}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.Users.Register(&models.SignupForm{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Phone:     fmt.Sprintf("+4420790%05d", phoneSeq.Add(1)),
		Password1: "secret-pass",
		Password2: "secret-pass",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) group(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group, err := e.Groups.Create(&models.GroupForm{Title: title, Slug: slug, Description: "about " + title})
	require.NoError(t, err)
	return group
}

func (e *testEnv) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post, err := e.Posts.CreatePost(author, &models.PostForm{Text: text})
	require.NoError(t, err)
	return post
}

func (e *testEnv) imageExists(rel string) bool {
	_, err := os.Stat(filepath.Join(e.images.Root, filepath.FromSlash(rel)))
	return err == nil
}
