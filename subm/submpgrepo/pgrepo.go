package submpgrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

var submCols = []string{
	"uuid", "athlete_uuid", "coach_uuid", "claimed_by",
	"title", "sport", "context", "goals", "questions",
	"video_storage_path", "video_playback_url", "video_duration_sec",
	"status", "review_uuid", "followup_requested", "sla_breach",
	"created_at", "updated_at", "submitted_at", "sla_deadline", "claimed_at",
	"completed_at", "reviewed_at", "followup_requested_at", "followup_deadline",
	"version",
}

func scanSubm(row pgx.Row) (submdomain.Subm, error) {
	var s submdomain.Subm
	var status string
	err := row.Scan(
		&s.UUID, &s.AthleteUUID, &s.CoachUUID, &s.ClaimedBy,
		&s.Title, &s.Sport, &s.Context, &s.Goals, &s.Questions,
		&s.Video.StoragePath, &s.Video.PlaybackURL, &s.Video.DurationSec,
		&status, &s.ReviewUUID, &s.FollowupRequested, &s.SlaBreach,
		&s.CreatedAt, &s.UpdatedAt, &s.SubmittedAt, &s.SlaDeadline, &s.ClaimedAt,
		&s.CompletedAt, &s.ReviewedAt, &s.FollowupRequestedAt, &s.FollowupDeadline,
		&s.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return submdomain.Subm{}, submdomain.ErrSubmNotFound()
	}
	if err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to scan submission: %w", err)
	}
	s.Status, err = submdomain.ParseStatus(status)
	if err != nil {
		return submdomain.Subm{}, err
	}
	return s, nil
}

// submValues lists column values in the order of submCols.
func submValues(s submdomain.Subm) []any {
	return []any{
		s.UUID, s.AthleteUUID, s.CoachUUID, s.ClaimedBy,
		s.Title, s.Sport, s.Context, s.Goals, s.Questions,
		s.Video.StoragePath, s.Video.PlaybackURL, s.Video.DurationSec,
		string(s.Status), s.ReviewUUID, s.FollowupRequested, s.SlaBreach,
		s.CreatedAt, s.UpdatedAt, s.SubmittedAt, s.SlaDeadline, s.ClaimedAt,
		s.CompletedAt, s.ReviewedAt, s.FollowupRequestedAt, s.FollowupDeadline,
		s.Version,
	}
}

func (r *pgSubmRepo) StoreSubm(ctx context.Context, s submdomain.Subm) error {
	s.Version = 1
	q, args, err := psql.Insert("submissions").Columns(submCols...).Values(submValues(s)...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	_, err = r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *pgSubmRepo) GetSubm(ctx context.Context, id uuid.UUID) (submdomain.Subm, error) {
	q, args, err := psql.Select(submCols...).From("submissions").Where(sq.Eq{"uuid": id}).ToSql()
	if err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to build select: %w", err)
	}
	return scanSubm(r.pool.QueryRow(ctx, q, args...))
}

func getSubmForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (submdomain.Subm, error) {
	q, args, err := psql.Select(submCols...).From("submissions").
		Where(sq.Eq{"uuid": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to build select: %w", err)
	}
	return scanSubm(tx.QueryRow(ctx, q, args...))
}

func updateSubm(ctx context.Context, tx pgx.Tx, s submdomain.Subm) error {
	set := make(map[string]any, len(submCols))
	vals := submValues(s)
	for i, col := range submCols {
		if col == "uuid" {
			continue
		}
		set[col] = vals[i]
	}
	q, args, err := psql.Update("submissions").SetMap(set).Where(sq.Eq{"uuid": s.UUID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	_, err = tx.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

// UpdateSubm applies fn to the locked row and writes the result back in one transaction.
func (r *pgSubmRepo) UpdateSubm(ctx context.Context, id uuid.UUID, fn func(*submdomain.Subm) error) (submdomain.Subm, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s, err := getSubmForUpdate(ctx, tx, id)
	if err != nil {
		return submdomain.Subm{}, err
	}
	if err := fn(&s); err != nil {
		return submdomain.Subm{}, err
	}
	s.Version++
	if err := updateSubm(ctx, tx, s); err != nil {
		return submdomain.Subm{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s, nil
}

// ClaimSubm sets claimed_by only if the row is still unclaimed and awaiting a coach.
// When the condition fails the current row is returned with claimed=false.
func (r *pgSubmRepo) ClaimSubm(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error) {
	q, args, err := psql.Update("submissions").
		Set("claimed_by", coachUUID).
		Set("coach_uuid", coachUUID).
		Set("claimed_at", at).
		Set("status", string(submdomain.StatusClaimed)).
		Set("updated_at", at).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"uuid": id, "status": string(submdomain.StatusAwaitingCoach), "claimed_by": nil}).
		Suffix("RETURNING " + strings.Join(submCols, ", ")).
		ToSql()
	if err != nil {
		return submdomain.Subm{}, false, fmt.Errorf("failed to build claim: %w", err)
	}
	s, err := scanSubm(r.pool.QueryRow(ctx, q, args...))
	if err == nil {
		return s, true, nil
	}
	if !isNotFound(err) {
		return submdomain.Subm{}, false, err
	}
	// lost the race or the row is not claimable; report what is there now
	s, err = r.GetSubm(ctx, id)
	if err != nil {
		return submdomain.Subm{}, false, err
	}
	return s, false, nil
}

func (r *pgSubmRepo) ListSubms(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error) {
	b := psql.Select(submCols...).From("submissions").OrderBy("created_at DESC")
	if f.Status != nil {
		b = b.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.AthleteUUID != nil {
		b = b.Where(sq.Eq{"athlete_uuid": *f.AthleteUUID})
	}
	if f.ClaimedBy != nil {
		b = b.Where(sq.Eq{"claimed_by": *f.ClaimedBy})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list: %w", err)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	res := []submdomain.Subm{}
	for rows.Next() {
		s, err := scanSubm(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return res, nil
}

// DeleteDraft removes a submission only while it is still a draft.
func (r *pgSubmRepo) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM submissions WHERE uuid = $1 AND status = $2`,
		id, string(submdomain.StatusDraft))
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func isNotFound(err error) bool {
	return srvcerror.HasCode(err, srvcerror.ErrCodeNotFound)
}
