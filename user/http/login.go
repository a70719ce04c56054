package http

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
)

func (h *UserHttpHandler) Login(w http.ResponseWriter, r *http.Request) {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	log := logger.FromContext(r.Context())

	var request loginRequest
	if err := httpjson.DecodeBody(r, &request); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	user, err := h.userSrvc.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	token, err := h.userSrvc.IssueToken(user)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, token)
}
