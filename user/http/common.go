package http

import "github.com/coachhub/backend/user"

type User struct {
	UUID      string  `json:"uuid"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Role      string  `json:"role"`
}

func mapUser(u user.User) User {
	return User{
		UUID:      u.UUID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Role:      string(u.Role),
	}
}
