package submhttp

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
	"github.com/coachhub/backend/user/auth"
)

func (h *SubmHttpHandler) GetSubm(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	identity, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	submUUID, err := urlParamUUID(r, "submUuid")
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	s, err := h.submSrvc.GetSubm.Handle(r.Context(), submquery.GetSubmParams{
		SubmUUID: submUUID,
		Caller:   identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	response, err := h.mapSubm(r.Context(), s)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	httpjson.WriteSuccessJson(w, response)
}
