package services

import (
	"errors"

	"yatube/app/errs"
)

const msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

var uniqueFields = []struct {
	field string
	err   errs.PublicError
}{
	{"username", errs.UsernameTaken},
	{"email", errs.EmailTaken},
	{"phone", errs.PhoneTaken},
	{"slug", errs.SlugTaken},
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.NotFound)
}

// taken turns a uniqueness error from the repositories into a form
// error on the matching field.
func taken(err error) error {
	for _, u := range uniqueFields {
		if errors.Is(err, u.err) {
			return errs.Invalid(u.field, u.err.Public())
		}
	}
	return err
}
