package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

var ErrInvalidRole = errors.New("invalid role")

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	SetRole(ctx context.Context, userID, role string) (User, error)
}
