package submquery

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type GetReviewQuery decorator.QueryHandler[GetReviewParams, submdomain.Review]

// GetReviewParams selects a review by its own id or, when ReviewUUID is nil, by submission.
type GetReviewParams struct {
	ReviewUUID uuid.UUID
	SubmUUID   uuid.UUID
	Caller     auth.Identity
}

func NewGetReviewQuery(
	getReview func(ctx context.Context, id uuid.UUID) (submdomain.Review, error),
	getReviewBySubm func(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error),
	getSubm func(ctx context.Context, id uuid.UUID) (submdomain.Subm, error),
) GetReviewQuery {
	return getReviewHandler{getReview: getReview, getReviewBySubm: getReviewBySubm, getSubm: getSubm}
}

type getReviewHandler struct {
	getReview       func(ctx context.Context, id uuid.UUID) (submdomain.Review, error)
	getReviewBySubm func(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error)
	getSubm         func(ctx context.Context, id uuid.UUID) (submdomain.Subm, error)
}

func (h getReviewHandler) Handle(ctx context.Context, p GetReviewParams) (submdomain.Review, error) {
	var rev submdomain.Review
	var err error
	if p.ReviewUUID != uuid.Nil {
		rev, err = h.getReview(ctx, p.ReviewUUID)
	} else {
		rev, err = h.getReviewBySubm(ctx, p.SubmUUID)
	}
	if err != nil {
		return submdomain.Review{}, err
	}

	s, err := h.getSubm(ctx, rev.SubmUUID)
	if err != nil {
		return submdomain.Review{}, err
	}
	if !canViewReview(p.Caller, s, rev) {
		if p.Caller.Is(auth.RoleAthlete) && s.IsOwnedBy(p.Caller) {
			// the owner learns the review exists but is not ready
			return submdomain.Review{}, submdomain.ErrReviewNotReady()
		}
		return submdomain.Review{}, errReviewHidden()
	}
	return rev, nil
}
