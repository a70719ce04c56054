package submhttp

import (
	"net/http"
	"strconv"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
	"github.com/coachhub/backend/user/auth"
)

// ListSubms accepts the optional query parameters status, mine and limit.
func (h *SubmHttpHandler) ListSubms(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	identity, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	q := r.URL.Query()
	params := submquery.ListSubmsParams{Caller: identity}
	if v := q.Get("status"); v != "" {
		st, err := submdomain.ParseStatus(v)
		if err != nil {
			httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest(err.Error()))
			return
		}
		params.Status = &st
	}
	if v := q.Get("mine"); v != "" {
		mine, err := strconv.ParseBool(v)
		if err != nil {
			httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("mine must be a boolean"))
			return
		}
		params.Mine = mine
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("limit must be a non-negative integer"))
			return
		}
		params.Limit = limit
	}

	subms, err := h.submSrvc.ListSubms.Handle(r.Context(), params)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	response := make([]Subm, 0, len(subms))
	for _, s := range subms {
		mapped, err := h.mapSubm(r.Context(), s)
		if err != nil {
			httpjson.HandleError(log, w, err)
			return
		}
		response = append(response, mapped)
	}
	httpjson.WriteSuccessJson(w, response)
}
