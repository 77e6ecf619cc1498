package models

import (
	"strings"
	"time"
)

// Validate checks the user record before it is stored.
func (u *User) Validate() error {
	return validateStruct(u)
}

// BeforeCreate normalizes the record and stamps the creation time.
func (u *User) BeforeCreate() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
}

// FullName returns "First Last", or the username when both are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Is reports whether u and other are the same stored user.
func (u *User) Is(other *User) bool {
	return u != nil && other != nil && u.ID == other.ID
}

func (u *User) String() string {
	return u.Username
}
