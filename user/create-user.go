package user

import (
	"context"
	"fmt"
	"time"

	"github.com/coachhub/backend/user/auth"
	"github.com/coachhub/backend/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserParams struct {
	Username  string    `json:"username" validate:"required,min=2,max=32"`
	Email     string    `json:"email" validate:"required,email,max=320"`
	Firstname *string   `json:"firstname" validate:"omitempty,max=35"`
	Lastname  *string   `json:"lastname" validate:"omitempty,max=35"`
	Password  string    `json:"password" validate:"required,min=8,max=1024"`
	Role      auth.Role `json:"role" validate:"required"`
}

// CreateUser registers an athlete or coach account.
func (s *UserSrvc) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	if p.Role != auth.RoleAthlete && p.Role != auth.RoleCoach {
		return User{}, newErrRoleNotAllowed()
	}
	return s.createUser(ctx, p)
}

// CreateAdmin registers an admin account. Only reachable from the admin CLI.
func (s *UserSrvc) CreateAdmin(ctx context.Context, p CreateUserParams) (User, error) {
	p.Role = auth.RoleAdmin
	return s.createUser(ctx, p)
}

func (s *UserSrvc) createUser(ctx context.Context, p CreateUserParams) (User, error) {
	if err := validation.Struct(p); err != nil {
		return User{}, err
	}

	usernameTaken, emailTaken, err := s.repo.ExistsUsernameOrEmail(ctx, p.Username, p.Email)
	if err != nil {
		return User{}, newErrInternalSE().SetDebug(err)
	}
	if usernameTaken {
		return User{}, newErrUsernameExists()
	}
	if emailTaken {
		return User{}, newErrEmailExists()
	}

	bcryptPwd, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, newErrInternalSE().SetDebug(err)
	}

	firstname := ""
	if p.Firstname != nil {
		firstname = *p.Firstname
	}

	lastname := ""
	if p.Lastname != nil {
		lastname = *p.Lastname
	}

	row := userRow{
		UUID:      uuid.New(),
		Firstname: firstname,
		Lastname:  lastname,
		Username:  p.Username,
		Email:     p.Email,
		BcryptPwd: string(bcryptPwd),
		Role:      string(p.Role),
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertUser(ctx, row); err != nil {
		return User{}, newErrInternalSE().SetDebug(fmt.Errorf("failed to store user: %w", err))
	}

	return row.toUser()
}
