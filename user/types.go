package user

import (
	"time"

	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type User struct {
	UUID      uuid.UUID
	Username  string
	Email     string
	Firstname *string
	Lastname  *string
	Role      auth.Role
	CreatedAt time.Time
}

// DisplayName is the name shown to the counterpart in notifications and views.
func (u User) DisplayName() string {
	if u.Firstname != nil && *u.Firstname != "" {
		if u.Lastname != nil && *u.Lastname != "" {
			return *u.Firstname + " " + *u.Lastname
		}
		return *u.Firstname
	}
	return u.Username
}

// userRow is the stored form of a user. Role is kept as a raw string
// so rows holding legacy aliases can still be read and migrated.
type userRow struct {
	UUID      uuid.UUID
	Firstname string
	Lastname  string
	Username  string
	Email     string
	BcryptPwd string
	Role      string
	CreatedAt time.Time
}

func (r userRow) toUser() (User, error) {
	role, err := auth.ParseRole(r.Role)
	if err != nil {
		return User{}, err
	}
	return User{
		UUID:      r.UUID,
		Username:  r.Username,
		Email:     r.Email,
		Firstname: &r.Firstname,
		Lastname:  &r.Lastname,
		Role:      role,
		CreatedAt: r.CreatedAt,
	}, nil
}
