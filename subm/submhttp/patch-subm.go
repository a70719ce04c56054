package submhttp

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user/auth"
)

func (h *SubmHttpHandler) PatchSubm(w http.ResponseWriter, r *http.Request) {
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

	var patch submdomain.Patch
	if err := httpjson.DecodeBody(r, &patch); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	s, err := h.submSrvc.PatchSubm.Handle(r.Context(), submcmd.PatchSubmParams{
		SubmUUID: submUUID,
		Caller:   identity,
		Patch:    patch,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}

// writeSubm maps s and writes it as a 200 response.
func (h *SubmHttpHandler) writeSubm(w http.ResponseWriter, r *http.Request, s submdomain.Subm) {
	response, err := h.mapSubm(r.Context(), s)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, response)
}
