package submpgrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var reviewCols = []string{
	"uuid", "subm_uuid", "coach_uuid", "status",
	"summary", "feedback", "drills",
	"created_at", "updated_at", "published_at", "republished_at",
}

func scanReview(row pgx.Row) (submdomain.Review, error) {
	var r submdomain.Review
	var status string
	err := row.Scan(
		&r.UUID, &r.SubmUUID, &r.CoachUUID, &status,
		&r.Summary, &r.Feedback, &r.Drills,
		&r.CreatedAt, &r.UpdatedAt, &r.PublishedAt, &r.RepublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return submdomain.Review{}, submdomain.ErrReviewNotFound()
	}
	if err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to scan review: %w", err)
	}
	r.Status = submdomain.ReviewStatus(status)
	return r, nil
}

func (r *pgSubmRepo) GetReview(ctx context.Context, id uuid.UUID) (submdomain.Review, error) {
	q, args, err := psql.Select(reviewCols...).From("reviews").Where(sq.Eq{"uuid": id}).ToSql()
	if err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to build select: %w", err)
	}
	return scanReview(r.pool.QueryRow(ctx, q, args...))
}

func (r *pgSubmRepo) GetReviewBySubm(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error) {
	q, args, err := psql.Select(reviewCols...).From("reviews").Where(sq.Eq{"subm_uuid": submUUID}).ToSql()
	if err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to build select: %w", err)
	}
	return scanReview(r.pool.QueryRow(ctx, q, args...))
}

func upsertReview(ctx context.Context, tx pgx.Tx, rev submdomain.Review) error {
	drills := rev.Drills
	if drills == nil {
		drills = []string{}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO reviews (
			uuid, subm_uuid, coach_uuid, status, summary, feedback, drills,
			created_at, updated_at, published_at, republished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (uuid) DO UPDATE SET
			coach_uuid = EXCLUDED.coach_uuid,
			status = EXCLUDED.status,
			summary = EXCLUDED.summary,
			feedback = EXCLUDED.feedback,
			drills = EXCLUDED.drills,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at,
			republished_at = EXCLUDED.republished_at
	`,
		rev.UUID,
		rev.SubmUUID,
		rev.CoachUUID,
		string(rev.Status),
		rev.Summary,
		rev.Feedback,
		drills,
		rev.CreatedAt,
		rev.UpdatedAt,
		rev.PublishedAt,
		rev.RepublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	return nil
}

func getReviewForUpdate(ctx context.Context, tx pgx.Tx, where sq.Eq) (submdomain.Review, error) {
	q, args, err := psql.Select(reviewCols...).From("reviews").
		Where(where).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to build select: %w", err)
	}
	return scanReview(tx.QueryRow(ctx, q, args...))
}

// SaveReview locks the submission, loads its review if any and stores what fn returns.
// The lock serializes draft saves with publishing.
func (r *pgSubmRepo) SaveReview(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s, err := getSubmForUpdate(ctx, tx, submUUID)
	if err != nil {
		return submdomain.Review{}, err
	}

	var existing *submdomain.Review
	cur, err := getReviewForUpdate(ctx, tx, sq.Eq{"subm_uuid": submUUID})
	switch {
	case err == nil:
		existing = &cur
	case isNotFound(err):
	default:
		return submdomain.Review{}, err
	}

	rev, err := fn(s, existing)
	if err != nil {
		return submdomain.Review{}, err
	}
	if err := upsertReview(ctx, tx, rev); err != nil {
		return submdomain.Review{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return submdomain.Review{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rev, nil
}

// PublishReview writes the review and its submission in one transaction.
func (r *pgSubmRepo) PublishReview(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return submdomain.Review{}, submdomain.Subm{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locks are taken submission first, then review, the same order as SaveReview.
	var submUUID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT subm_uuid FROM reviews WHERE uuid = $1`, reviewUUID).Scan(&submUUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return submdomain.Review{}, submdomain.Subm{}, submdomain.ErrReviewNotFound()
	}
	if err != nil {
		return submdomain.Review{}, submdomain.Subm{}, fmt.Errorf("failed to look up review: %w", err)
	}
	s, err := getSubmForUpdate(ctx, tx, submUUID)
	if err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}
	rev, err := getReviewForUpdate(ctx, tx, sq.Eq{"uuid": reviewUUID})
	if err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}

	if err := fn(&rev, &s); err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}
	s.Version++

	if err := upsertReview(ctx, tx, rev); err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}
	if err := updateSubm(ctx, tx, s); err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return submdomain.Review{}, submdomain.Subm{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rev, s, nil
}
