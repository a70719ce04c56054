package submhttp

import (
	"log/slog"
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

func (h *SubmHttpHandler) PostSubm(w http.ResponseWriter, r *http.Request) {
	type createSubmRequest struct {
		Title     string  `json:"title"`
		Sport     string  `json:"sport"`
		Context   string  `json:"context"`
		Goals     string  `json:"goals"`
		Questions string  `json:"questions"`
		CoachUUID *string `json:"coach_uuid"`
	}

	log := logger.FromContext(r.Context())

	identity, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	if err := identity.Require(auth.RoleAthlete); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	var request createSubmRequest
	if err := httpjson.DecodeBody(r, &request); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	var coachUUID *uuid.UUID
	if request.CoachUUID != nil {
		id, err := uuid.Parse(*request.CoachUUID)
		if err != nil {
			httpjson.HandleError(log, w, errInvalidUUID("coach_uuid"))
			return
		}
		coachUUID = &id
	}

	allowed, release := h.reserveCreate(identity.UserUUID)
	if !allowed {
		httpjson.HandleError(log, w, errSubmTooFrequent(int(createInterval.Seconds())))
		return
	}

	s, err := h.submSrvc.CreateSubm.Handle(r.Context(), submcmd.CreateSubmParams{
		Athlete: identity,
		Content: submdomain.Content{
			Title:     request.Title,
			Sport:     request.Sport,
			Context:   request.Context,
			Goals:     request.Goals,
			Questions: request.Questions,
		},
		CoachUUID: coachUUID,
	})
	if err != nil {
		release()
		httpjson.HandleError(log, w, err)
		return
	}

	log.Info("submission created", slog.String("subm_uuid", s.UUID.String()))

	response, err := h.mapSubm(r.Context(), s)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	httpjson.WriteCreatedJson(w, response)
}
