package submcmd

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type MarkInReviewCmd decorator.CmdHandler[MarkInReviewParams, submdomain.Subm]

type MarkInReviewParams struct {
	SubmUUID uuid.UUID
	Coach    auth.Identity
}

func NewMarkInReviewCmd(updateSubm updateSubmFunc, now nowFunc) MarkInReviewCmd {
	return markInReviewHandler{updateSubm: updateSubm, now: now}
}

type markInReviewHandler struct {
	updateSubm updateSubmFunc
	now        nowFunc
}

func (h markInReviewHandler) Handle(ctx context.Context, p MarkInReviewParams) (submdomain.Subm, error) {
	return h.updateSubm(ctx, p.SubmUUID, func(s *submdomain.Subm) error {
		return s.StartReview(p.Coach, h.now())
	})
}
