package submcmd

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/coachhub/backend/validation"
	"github.com/google/uuid"
)

type SaveReviewDraftCmd decorator.CmdHandler[SaveReviewDraftParams, submdomain.Review]

type SaveReviewDraftParams struct {
	SubmUUID uuid.UUID
	Coach    auth.Identity
	Content  submdomain.ReviewContent
}

func NewSaveReviewDraftCmd(
	saveReview func(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error),
	now nowFunc,
) SaveReviewDraftCmd {
	return saveReviewDraftHandler{saveReview: saveReview, now: now}
}

type saveReviewDraftHandler struct {
	saveReview func(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error)
	now        nowFunc
}

func (h saveReviewDraftHandler) Handle(ctx context.Context, p SaveReviewDraftParams) (submdomain.Review, error) {
	if err := validation.Struct(p.Content); err != nil {
		return submdomain.Review{}, err
	}

	return h.saveReview(ctx, p.SubmUUID, func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error) {
		now := h.now()
		if existing == nil {
			if err := s.CheckReviewAuthor(p.Coach); err != nil {
				return submdomain.Review{}, err
			}
			return submdomain.NewReviewDraft(uuid.New(), &s, p.Coach, p.Content, now), nil
		}
		rev := *existing
		if err := rev.Edit(&s, p.Coach, p.Content, now); err != nil {
			return submdomain.Review{}, err
		}
		return rev, nil
	})
}
