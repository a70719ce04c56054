package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var errNoUser = errors.New("user does not exist")

type UserRepo interface {
	InsertUser(ctx context.Context, row userRow) error
	GetUserByUUID(ctx context.Context, userUuid uuid.UUID) (userRow, error)
	GetUserByUsername(ctx context.Context, username string) (userRow, error)
	ExistsUsernameOrEmail(ctx context.Context, username string, email string) (usernameTaken bool, emailTaken bool, err error)
	RewriteRole(ctx context.Context, from string, to string) (int64, error)
}
