// Package storage keeps uploaded post images on the local disk.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"yatube/app/errs"
	"yatube/app/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PostsDir is the media subdirectory holding post images.
const PostsDir = "posts"

const (
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgEmptyImage   = "The submitted file is empty."
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore saves images under Root and hands back paths relative
// to it, which is what a Post stores in its Image field.
type ImageStore struct {
	Root    string
	MaxSize int64
}

// NewImageStore returns a store rooted at dir. maxSize of zero means
// no limit.
func NewImageStore(dir string, maxSize int64) *ImageStore {
	return &ImageStore{Root: dir, MaxSize: maxSize}
}

// Save validates the upload and writes it under a fresh name. Invalid
// uploads return a *errs.ValidationError on the "image" field.
func (s *ImageStore) Save(up *models.Upload) (string, error) {
	if up == nil || len(up.Data) == 0 {
		return "", errs.Invalid("image", msgEmptyImage)
	}
	if s.MaxSize > 0 && int64(len(up.Data)) > s.MaxSize {
		return "", errs.Invalid("image", fmt.Sprintf("Ensure the file is at most %d bytes (it has %d).", s.MaxSize, len(up.Data)))
	}
	mt := mimetype.Detect(up.Data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", errs.Invalid("image", msgInvalidImage)
	}

	dir := filepath.Join(s.Root, PostsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), up.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return PostsDir + "/" + name, nil
}

// Delete removes a stored image. Empty and missing paths are ignored.
func (s *ImageStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Path returns the absolute location of a stored image.
func (s *ImageStore) Path(rel string) (string, error) {
	return s.resolve(rel)
}

func (s *ImageStore) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes media root", rel)
	}
	return filepath.Join(s.Root, clean), nil
}
