package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func (s *UserSrvc) Login(ctx context.Context, username string, password string) (User, error) {
	row, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errNoUser) {
			return User{}, newErrUsernameOrPasswordIncorrect()
		}
		return User{}, newErrInternalSE().SetDebug(fmt.Errorf("failed to get user: %w", err))
	}

	err = bcrypt.CompareHashAndPassword([]byte(row.BcryptPwd), []byte(password))
	if err != nil {
		return User{}, newErrUsernameOrPasswordIncorrect()
	}

	u, err := row.toUser()
	if err != nil {
		// legacy role not yet migrated
		return User{}, newErrInternalSE().SetDebug(err)
	}
	return u, nil
}
