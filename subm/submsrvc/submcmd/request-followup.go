package submcmd

import (
	"context"

	"github.com/coachhub/backend/notify"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type RequestFollowupCmd decorator.CmdHandler[RequestFollowupParams, submdomain.Subm]

type RequestFollowupParams struct {
	SubmUUID uuid.UUID
	Athlete  auth.Identity
}

func NewRequestFollowupCmd(
	getReviewBySubm func(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error),
	updateSubm updateSubmFunc,
	notifyUser notifyFunc,
	policy submdomain.Policy,
	now nowFunc,
) RequestFollowupCmd {
	return requestFollowupHandler{
		getReviewBySubm: getReviewBySubm,
		updateSubm:      updateSubm,
		notifyUser:      notifyUser,
		policy:          policy,
		now:             now,
	}
}

type requestFollowupHandler struct {
	getReviewBySubm func(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error)
	updateSubm      updateSubmFunc
	notifyUser      notifyFunc
	policy          submdomain.Policy
	now             nowFunc
}

func (h requestFollowupHandler) Handle(ctx context.Context, p RequestFollowupParams) (submdomain.Subm, error) {
	var review *submdomain.Review
	rev, err := h.getReviewBySubm(ctx, p.SubmUUID)
	switch {
	case err == nil:
		review = &rev
	case srvcerror.HasCode(err, srvcerror.ErrCodeNotFound):
	default:
		return submdomain.Subm{}, err
	}

	s, err := h.updateSubm(ctx, p.SubmUUID, func(s *submdomain.Subm) error {
		return s.RequestFollowup(p.Athlete, review, h.now(), h.policy)
	})
	if err != nil {
		return submdomain.Subm{}, err
	}

	if s.ClaimedBy != nil {
		h.notifyUser(ctx, notify.KindFollowupRequested, *s.ClaimedBy, submPayload(s))
	}
	return s, nil
}
