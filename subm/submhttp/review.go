package submhttp

import (
	"net/http"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
	"github.com/coachhub/backend/user/auth"
)

// PutReview creates the review draft or replaces its content.
func (h *SubmHttpHandler) PutReview(w http.ResponseWriter, r *http.Request) {
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

	var content submdomain.ReviewContent
	if err := httpjson.DecodeBody(r, &content); err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	rev, err := h.submSrvc.SaveReviewDraft.Handle(r.Context(), submcmd.SaveReviewDraftParams{
		SubmUUID: submUUID,
		Coach:    identity,
		Content:  content,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeReview(w, r, rev)
}

func (h *SubmHttpHandler) GetReview(w http.ResponseWriter, r *http.Request) {
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

	rev, err := h.submSrvc.GetReview.Handle(r.Context(), submquery.GetReviewParams{
		SubmUUID: submUUID,
		Caller:   identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.writeReview(w, r, rev)
}

func (h *SubmHttpHandler) PublishReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	identity, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	reviewUUID, err := urlParamUUID(r, "reviewUuid")
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	res, err := h.submSrvc.PublishReview.Handle(r.Context(), submcmd.PublishReviewParams{
		ReviewUUID: reviewUUID,
		Coach:      identity,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	rev, err := h.mapReview(r.Context(), res.Review)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	s, err := h.mapSubm(r.Context(), res.Subm)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	httpjson.WriteSuccessJson(w, PublishReviewResponse{Review: rev, Subm: s})
}

func (h *SubmHttpHandler) writeReview(w http.ResponseWriter, r *http.Request, rev submdomain.Review) {
	response, err := h.mapReview(r.Context(), rev)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, response)
}
