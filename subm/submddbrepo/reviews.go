package submddbrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
	"github.com/guregu/dynamo/v2"
)

func (r *DynamoDbSubmRepo) getReviewRow(ctx context.Context, id uuid.UUID) (reviewRow, error) {
	var row reviewRow
	err := r.reviews.Get("uuid", id.String()).Consistent(true).One(ctx, &row)
	if errors.Is(err, dynamo.ErrNotFound) {
		return reviewRow{}, submdomain.ErrReviewNotFound()
	}
	if err != nil {
		return reviewRow{}, fmt.Errorf("failed to get review: %w", err)
	}
	return row, nil
}

// reviewRowBySubm follows the submission's review_item_uuid. Both reads are
// strongly consistent, unlike the subm_uuid index.
func (r *DynamoDbSubmRepo) reviewRowBySubm(ctx context.Context, submUUID uuid.UUID) (reviewRow, error) {
	sRow, err := r.getSubmRow(ctx, submUUID)
	if err != nil {
		return reviewRow{}, err
	}
	return r.reviewRowOf(ctx, sRow)
}

func (r *DynamoDbSubmRepo) reviewRowOf(ctx context.Context, sRow submRow) (reviewRow, error) {
	if sRow.ReviewItem == nil {
		return reviewRow{}, submdomain.ErrReviewNotFound()
	}
	id, err := uuid.Parse(*sRow.ReviewItem)
	if err != nil {
		return reviewRow{}, fmt.Errorf("submission %s: bad review reference: %w", sRow.UUID, err)
	}
	return r.getReviewRow(ctx, id)
}

func (r *DynamoDbSubmRepo) GetReview(ctx context.Context, id uuid.UUID) (submdomain.Review, error) {
	row, err := r.getReviewRow(ctx, id)
	if err != nil {
		return submdomain.Review{}, err
	}
	return row.toDomain()
}

func (r *DynamoDbSubmRepo) GetReviewBySubm(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error) {
	row, err := r.reviewRowBySubm(ctx, submUUID)
	if err != nil {
		return submdomain.Review{}, err
	}
	return row.toDomain()
}

// SaveReview writes the review together with a version bump of its submission so
// concurrent draft saves and publishes serialize on the submission item. The first
// save also records the review id on the submission, so a racing first save
// fails the version condition, retries and finds the review.
func (r *DynamoDbSubmRepo) SaveReview(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error) {
	for range maxAttempts {
		sRow, err := r.getSubmRow(ctx, submUUID)
		if err != nil {
			return submdomain.Review{}, err
		}
		s, err := sRow.toDomain()
		if err != nil {
			return submdomain.Review{}, err
		}

		var existing *submdomain.Review
		var revVersion int64
		rRow, err := r.reviewRowOf(ctx, sRow)
		switch {
		case err == nil:
			cur, err := rRow.toDomain()
			if err != nil {
				return submdomain.Review{}, err
			}
			existing = &cur
			revVersion = rRow.Version
		case isNotFound(err):
		default:
			return submdomain.Review{}, err
		}

		rev, err := fn(s, existing)
		if err != nil {
			return submdomain.Review{}, err
		}

		row := toReviewRow(rev, revVersion+1)
		put := r.reviews.Put(&row)
		if existing == nil {
			put = put.If("attribute_not_exists('uuid')")
		} else {
			put = put.If("'version' = ?", revVersion)
		}
		bump := r.subms.Update("uuid", sRow.UUID).
			Add("version", 1).
			If("'version' = ?", sRow.Version)
		if existing == nil {
			bump = bump.Set("review_item_uuid", row.UUID)
		}

		err = r.db.WriteTx().Update(bump).Put(put).Run(ctx)
		if dynamo.IsCondCheckFailed(err) {
			continue
		}
		if err != nil {
			return submdomain.Review{}, fmt.Errorf("failed to save review: %w", err)
		}
		return rev, nil
	}
	return submdomain.Review{}, fmt.Errorf("failed to save review of %s: %w", submUUID, errTooManyAttempts)
}

// PublishReview puts the review and the submission in one TransactWriteItems call,
// each conditioned on the version it was read at.
func (r *DynamoDbSubmRepo) PublishReview(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error) {
	for range maxAttempts {
		rRow, err := r.getReviewRow(ctx, reviewUUID)
		if err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}
		rev, err := rRow.toDomain()
		if err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}
		sRow, err := r.getSubmRow(ctx, rev.SubmUUID)
		if err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}
		s, err := sRow.toDomain()
		if err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}

		if err := fn(&rev, &s); err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}
		prevSubmVersion := s.Version
		s.Version++

		newRevRow := toReviewRow(rev, rRow.Version+1)
		newSubmRow := toSubmRow(s)
		newSubmRow.ReviewItem = sRow.ReviewItem
		err = r.db.WriteTx().
			Put(r.reviews.Put(&newRevRow).If("'version' = ?", rRow.Version)).
			Put(r.subms.Put(&newSubmRow).If("'version' = ?", prevSubmVersion)).
			Run(ctx)
		if dynamo.IsCondCheckFailed(err) {
			continue
		}
		if err != nil {
			return submdomain.Review{}, submdomain.Subm{}, fmt.Errorf("failed to publish review: %w", err)
		}
		return rev, s, nil
	}
	return submdomain.Review{}, submdomain.Subm{}, fmt.Errorf("failed to publish review %s: %w", reviewUUID, errTooManyAttempts)
}
