package http

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/user"
	"github.com/coachhub/backend/user/auth"
)

func (h *UserHttpHandler) Register(w http.ResponseWriter, r *http.Request) {
	type registerRequest struct {
		Username  string  `json:"username"`
		Email     string  `json:"email"`
		Firstname *string `json:"firstname"`
		Lastname  *string `json:"lastname"`
		Password  string  `json:"password"`
		Role      string  `json:"role"`
	}

	log := logger.FromContext(r.Context())

	var request registerRequest
	if err := httpjson.DecodeBody(r, &request); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	created, err := h.userSrvc.CreateUser(r.Context(), user.CreateUserParams{
		Username:  request.Username,
		Email:     request.Email,
		Firstname: request.Firstname,
		Lastname:  request.Lastname,
		Password:  request.Password,
		Role:      auth.Role(request.Role),
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapUser(created))
}
