package user

import (
	"context"

	"socialfeed/internal/core/user"
)

type UserRepository interface {
	Create(ctx context.Context, user *user.User) (*user.User, error)
	// FindByID returns user.ErrNotFound for unknown or deleted users.
	FindByID(ctx context.Context, id int64) (*user.User, error)
}
