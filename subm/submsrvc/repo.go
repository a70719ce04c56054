package submsrvc

import (
	"context"
	"time"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
)

// SubmRepo is the submission record store. Every store guarantees that
// ClaimSubm is a single conditional write, that UpdateSubm and SaveReview are
// atomic read-modify-writes, and that PublishReview persists both records or neither.
type SubmRepo interface {
	StoreSubm(ctx context.Context, s submdomain.Subm) error
	GetSubm(ctx context.Context, id uuid.UUID) (submdomain.Subm, error)
	UpdateSubm(ctx context.Context, id uuid.UUID, fn func(*submdomain.Subm) error) (submdomain.Subm, error)
	// ClaimSubm returns the stored submission and whether this call claimed it.
	ClaimSubm(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error)
	ListSubms(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error)

	GetReview(ctx context.Context, id uuid.UUID) (submdomain.Review, error)
	GetReviewBySubm(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error)
	SaveReview(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error)
	PublishReview(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error)
}
