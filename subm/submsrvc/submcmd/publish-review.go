package submcmd

import (
	"context"

	"github.com/coachhub/backend/notify"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type PublishReviewCmd decorator.CmdHandler[PublishReviewParams, PublishReviewResult]

type PublishReviewParams struct {
	ReviewUUID uuid.UUID
	Coach      auth.Identity
}

type PublishReviewResult struct {
	Review submdomain.Review
	Subm   submdomain.Subm
}

func NewPublishReviewCmd(
	publishReview func(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error),
	notifyUser notifyFunc,
	now nowFunc,
) PublishReviewCmd {
	return publishReviewHandler{publishReview: publishReview, notifyUser: notifyUser, now: now}
}

type publishReviewHandler struct {
	// persists the review and its submission as one unit of work
	publishReview func(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error)
	notifyUser    notifyFunc
	now           nowFunc
}

func (h publishReviewHandler) Handle(ctx context.Context, p PublishReviewParams) (PublishReviewResult, error) {
	rev, s, err := h.publishReview(ctx, p.ReviewUUID, func(r *submdomain.Review, s *submdomain.Subm) error {
		return submdomain.Publish(r, s, p.Coach, h.now())
	})
	if err != nil {
		return PublishReviewResult{}, err
	}

	h.notifyUser(ctx, notify.KindReviewPublished, s.AthleteUUID, submPayload(s))
	return PublishReviewResult{Review: rev, Subm: s}, nil
}
