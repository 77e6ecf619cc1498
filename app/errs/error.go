package errs

import (
	"sort"
	"strings"
)

const (
	// NotFound is returned when a user, group, post or comment
	// cannot be found by its handle, slug or ID.
	NotFound modelError = "models: resource not found"
	// Forbidden is returned when the acting user does not own
	// the resource being changed.
	Forbidden modelError = "models: action not allowed for this user"
	// Unauthorized is returned when an operation needs an
	// authenticated viewer and none was supplied.
	Unauthorized modelError = "models: authentication required"
	// InvalidCredentials is returned when a login does not match
	// any user or the password is wrong.
	InvalidCredentials modelError = "models: incorrect username or password"

	UsernameTaken modelError = "models: a user with that username already exists"
	EmailTaken    modelError = "models: a user with that email already exists"
	PhoneTaken    modelError = "models: a user with that phone number already exists"
	SlugTaken     modelError = "models: a group with that slug already exists"
)

// PublicError is an error whose message can be shown to end users.
type PublicError interface {
	error
	Public() string
}

type modelError string

func (e modelError) Error() string {
	return string(e)
}

// Public returns the message without the package prefix and with
// the first word capitalized, suitable for rendering in a page.
func (e modelError) Public() string {
	s := strings.Replace(string(e), "models: ", "", 1)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ValidationError collects per-field form errors. The empty field
// name holds errors that belong to the whole form.
type ValidationError struct {
	Fields map[string]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message recorded for field, if any.
func (e *ValidationError) Field(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}
