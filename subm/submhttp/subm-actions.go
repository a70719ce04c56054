package submhttp

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

// CompleteUpload takes an optional body with the video's duration.
func (h *SubmHttpHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	type completeUploadRequest struct {
		StoragePath string `json:"storage_path"`
		DurationSec int    `json:"duration_sec"`
	}

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

	var request completeUploadRequest
	if r.ContentLength != 0 {
		if err := httpjson.DecodeBody(r, &request); err != nil {
			httpjson.HandleError(log, w, err)
			return
		}
	}

	s, err := h.submSrvc.CompleteUpload.Handle(r.Context(), submcmd.CompleteUploadParams{
		SubmUUID: submUUID,
		Athlete:  identity,
		Video: submdomain.VideoRef{
			StoragePath: request.StoragePath,
			DurationSec: request.DurationSec,
		},
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}

func (h *SubmHttpHandler) ClaimSubm(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.submSrvc.ClaimSubm.Handle(r.Context(), submcmd.ClaimSubmParams{
		SubmUUID: submUUID,
		Coach:    identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}

func (h *SubmHttpHandler) MarkInReview(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.submSrvc.MarkInReview.Handle(r.Context(), submcmd.MarkInReviewParams{
		SubmUUID: submUUID,
		Coach:    identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}

func (h *SubmHttpHandler) RequestFollowup(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.submSrvc.RequestFollowup.Handle(r.Context(), submcmd.RequestFollowupParams{
		SubmUUID: submUUID,
		Athlete:  identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}

func (h *SubmHttpHandler) ReassignSubm(w http.ResponseWriter, r *http.Request) {
	type reassignRequest struct {
		CoachUUID string `json:"coach_uuid"`
	}

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

	var request reassignRequest
	if err := httpjson.DecodeBody(r, &request); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	coachUUID, err := uuid.Parse(request.CoachUUID)
	if err != nil {
		httpjson.HandleError(log, w, errInvalidUUID("coach_uuid"))
		return
	}

	s, err := h.submSrvc.ReassignSubm.Handle(r.Context(), submcmd.ReassignSubmParams{
		SubmUUID:  submUUID,
		Admin:     identity,
		CoachUUID: coachUUID,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeSubm(w, r, s)
}
