package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/errs"
	"yatube/app/models"
)

// parsePostForm reads a post form, including an optional image
// upload. Bodies larger than maxUpload are a form error on "image".
func parsePostForm(w http.ResponseWriter, r *http.Request, maxUpload int64) (*models.PostForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &models.PostForm{}, errs.Invalid("image", "The uploaded file is too large.")
		}
		return nil, fmt.Errorf("parse post form: %w", err)
	}
	if r.MultipartForm == nil {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse post form: %w", err)
		}
	}

	form := &models.PostForm{
		Text:       r.PostFormValue("text"),
		ClearImage: r.PostFormValue("image-clear") != "",
	}
	if raw := strings.TrimSpace(r.PostFormValue("group")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			id = 0
		}
		form.GroupID = &id
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, nil
	case err != nil:
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > 0 {
		form.Image = &models.Upload{Filename: header.Filename, Data: data}
	}
	return form, nil
}

// fieldErrors returns the per-field messages of a validation error.
func fieldErrors(err error) (map[string]string, bool) {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
