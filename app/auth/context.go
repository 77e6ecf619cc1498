package auth

import (
	"context"

	"yatube/app/models"
)

const (
	userKey privateKey = "user"
)

type privateKey string

// SetUser stores the authenticated viewer in ctx.
func SetUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the viewer stored by SetUser, or nil for anonymous
// requests.
func GetUser(ctx context.Context) *models.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*models.User); ok {
			return user
		}
	}
	return nil
}
