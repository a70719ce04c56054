// Package submddbrepo stores submissions and reviews in DynamoDB.
package submddbrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
	"github.com/guregu/dynamo/v2"
)

// maxAttempts bounds optimistic-locking retries of read-modify-write operations.
const maxAttempts = 5

var errTooManyAttempts = errors.New("too many concurrent modifications")

type DynamoDbSubmRepo struct {
	db      *dynamo.DB
	subms   dynamo.Table
	reviews dynamo.Table
}

// NewDynamoDbSubmRepo uses the tables <prefix>Submissions and <prefix>Reviews.
func NewDynamoDbSubmRepo(ddbClient *dynamodb.Client, tablePrefix string) *DynamoDbSubmRepo {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbSubmRepo{
		db:      db,
		subms:   db.Table(tablePrefix + "Submissions"),
		reviews: db.Table(tablePrefix + "Reviews"),
	}
}

// CreateTables creates both tables with their indexes, for local development and tests.
func (r *DynamoDbSubmRepo) CreateTables(ctx context.Context) error {
	err := r.db.CreateTable(r.subms.Name(), submRow{}).OnDemand(true).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}
	err = r.db.CreateTable(r.reviews.Name(), reviewRow{}).OnDemand(true).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	if err := r.subms.Wait(ctx); err != nil {
		return err
	}
	return r.reviews.Wait(ctx)
}

func (r *DynamoDbSubmRepo) StoreSubm(ctx context.Context, s submdomain.Subm) error {
	s.Version = 1
	row := toSubmRow(s)
	err := r.subms.Put(&row).If("attribute_not_exists('uuid')").Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to put submission: %w", err)
	}
	return nil
}

func (r *DynamoDbSubmRepo) getSubmRow(ctx context.Context, id uuid.UUID) (submRow, error) {
	var row submRow
	err := r.subms.Get("uuid", id.String()).Consistent(true).One(ctx, &row)
	if errors.Is(err, dynamo.ErrNotFound) {
		return submRow{}, submdomain.ErrSubmNotFound()
	}
	if err != nil {
		return submRow{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return row, nil
}

func (r *DynamoDbSubmRepo) GetSubm(ctx context.Context, id uuid.UUID) (submdomain.Subm, error) {
	row, err := r.getSubmRow(ctx, id)
	if err != nil {
		return submdomain.Subm{}, err
	}
	return row.toDomain()
}

// UpdateSubm retries fn on a fresh copy whenever another writer bumped the version first.
func (r *DynamoDbSubmRepo) UpdateSubm(ctx context.Context, id uuid.UUID, fn func(*submdomain.Subm) error) (submdomain.Subm, error) {
	for range maxAttempts {
		cur, err := r.getSubmRow(ctx, id)
		if err != nil {
			return submdomain.Subm{}, err
		}
		s, err := cur.toDomain()
		if err != nil {
			return submdomain.Subm{}, err
		}
		if err := fn(&s); err != nil {
			return submdomain.Subm{}, err
		}
		prev := s.Version
		s.Version++
		row := toSubmRow(s)
		row.ReviewItem = cur.ReviewItem
		err = r.subms.Put(&row).If("'version' = ?", prev).Run(ctx)
		if dynamo.IsCondCheckFailed(err) {
			continue
		}
		if err != nil {
			return submdomain.Subm{}, fmt.Errorf("failed to put submission: %w", err)
		}
		return s, nil
	}
	return submdomain.Subm{}, fmt.Errorf("failed to update submission %s: %w", id, errTooManyAttempts)
}

// ClaimSubm is a single conditional UpdateItem on claimed_by being absent.
func (r *DynamoDbSubmRepo) ClaimSubm(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error) {
	var row submRow
	err := r.subms.Update("uuid", id.String()).
		Set("claimed_by", coachUUID.String()).
		Set("coach_uuid", coachUUID.String()).
		Set("claimed_at", at).
		Set("status", string(submdomain.StatusClaimed)).
		Set("updated_at", at).
		Add("version", 1).
		If("attribute_exists('uuid') AND attribute_not_exists('claimed_by') AND 'status' = ?", string(submdomain.StatusAwaitingCoach)).
		Value(ctx, &row)
	if err == nil {
		s, err := row.toDomain()
		return s, err == nil, err
	}
	if !dynamo.IsCondCheckFailed(err) {
		return submdomain.Subm{}, false, fmt.Errorf("failed to claim submission: %w", err)
	}
	s, err := r.GetSubm(ctx, id)
	if err != nil {
		return submdomain.Subm{}, false, err
	}
	return s, false, nil
}

func (r *DynamoDbSubmRepo) ListSubms(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error) {
	var rows []submRow
	var err error
	if f.AthleteUUID != nil {
		err = r.subms.Get("athlete_uuid", f.AthleteUUID.String()).Index(athleteIndex).All(ctx, &rows)
	} else {
		scan := r.subms.Scan().Consistent(true)
		if f.Status != nil {
			scan = scan.Filter("'status' = ?", string(*f.Status))
		}
		if f.ClaimedBy != nil {
			scan = scan.Filter("'claimed_by' = ?", f.ClaimedBy.String())
		}
		err = scan.All(ctx, &rows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	res := make([]submdomain.Subm, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		if f.Matches(s) {
			res = append(res, s)
		}
	}
	slices.SortFunc(res, func(a, b submdomain.Subm) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

func (r *DynamoDbSubmRepo) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	err := r.subms.Delete("uuid", id.String()).
		If("'status' = ?", string(submdomain.StatusDraft)).
		Run(ctx)
	if dynamo.IsCondCheckFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	return srvcerror.HasCode(err, srvcerror.ErrCodeNotFound)
}
