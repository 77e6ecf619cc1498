package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelErrorPublic(t *testing.T) {
	assert.Equal(t, "Resource not found", NotFound.Public())
	assert.Equal(t, "A user with that username already exists", UsernameTaken.Public())
	assert.Equal(t, "models: resource not found", NotFound.Error())
}

func TestModelErrorMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("group %q: %w", "cats", NotFound)
	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, Forbidden))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"text":  "This field is required.",
		"":      "Form is broken.",
		"group": "Select a valid choice.",
	}}
	assert.Equal(t,
		"validation failed: Form is broken.; group: Select a valid choice.; text: This field is required.",
		err.Error())
	assert.Equal(t, "This field is required.", err.Field("text"))
	assert.Empty(t, err.Field("image"))

	var nilErr *ValidationError
	assert.Empty(t, nilErr.Field("text"))

	wrapped := fmt.Errorf("create post: %w", Invalid("text", "bad"))
	var verr *ValidationError
	assert.True(t, errors.As(wrapped, &verr))
	assert.Equal(t, "bad", verr.Field("text"))
}
