package models

import (
	"errors"
	"strings"

	"yatube/app/errs"
)

// Upload is an uploaded file read fully into memory.
type Upload struct {
	Filename string
	Data     []byte
}

// PostForm is the input for creating and editing a post.
type PostForm struct {
	Text       string  `form:"text" validate:"required"`
	GroupID    *int    `form:"group" validate:"omitempty,gt=0"`
	Image      *Upload `form:"image" validate:"-"`
	ClearImage bool    `form:"image-clear" validate:"-"`
}

// Clean trims the text and validates the form.
func (f *PostForm) Clean() error {
	f.Text = strings.TrimSpace(f.Text)
	return validateStruct(f)
}

// CommentForm is the input for adding a comment.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

// Clean trims the text and validates the form.
func (f *CommentForm) Clean() error {
	f.Text = strings.TrimSpace(f.Text)
	return validateStruct(f)
}

// SignupForm is the registration form.
type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"required,max=100"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Phone     string `form:"phone" validate:"required,e164"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// Clean trims everything except the passwords and validates the form.
func (f *SignupForm) Clean() error {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.Join(strings.Fields(f.Phone), "")
	return validateStruct(f)
}

// LoginForm is the login form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Clean validates the form.
func (f *LoginForm) Clean() error {
	f.Username = strings.TrimSpace(f.Username)
	return validateStruct(f)
}

// GroupForm is the input for creating a group.
type GroupForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"required"`
}

// Clean trims and validates the form.
func (f *GroupForm) Clean() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	return validateStruct(f)
}

// FieldErrors extracts the per-field messages from err, or nil when
// err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
