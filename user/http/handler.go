package http

import (
	"github.com/coachhub/backend/user"
	"github.com/go-chi/chi/v5"
)

type UserHttpHandler struct {
	userSrvc *user.UserSrvc
}

func NewUserHttpHandler(userSrvc *user.UserSrvc) *UserHttpHandler {
	return &UserHttpHandler{
		userSrvc: userSrvc,
	}
}

// RegisterRoutes expects the JWT middleware to be installed on r.
func (h *UserHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/users", h.Register)
	r.Get("/users/me", h.WhoAmI)
}
