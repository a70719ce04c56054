// Package submmemrepo keeps submissions and reviews in process memory.
// It backs the "memory" store and the service tests.
package submmemrepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
)

type MemSubmRepo struct {
	mu      sync.Mutex
	subms   map[uuid.UUID]submdomain.Subm
	reviews map[uuid.UUID]submdomain.Review

	publishFault func() error
}

func NewMemSubmRepo() *MemSubmRepo {
	return &MemSubmRepo{
		subms:   make(map[uuid.UUID]submdomain.Subm),
		reviews: make(map[uuid.UUID]submdomain.Review),
	}
}

// InjectPublishFault makes PublishReview call f after staging the review
// write and before staging the submission write. A non-nil error aborts the publish.
func (r *MemSubmRepo) InjectPublishFault(f func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishFault = f
}

func (r *MemSubmRepo) StoreSubm(ctx context.Context, s submdomain.Subm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version = 1
	r.subms[s.UUID] = clone(s)
	return nil
}

func (r *MemSubmRepo) GetSubm(ctx context.Context, id uuid.UUID) (submdomain.Subm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[id]
	if !ok {
		return submdomain.Subm{}, submdomain.ErrSubmNotFound()
	}
	return clone(s), nil
}

func (r *MemSubmRepo) UpdateSubm(ctx context.Context, id uuid.UUID, fn func(*submdomain.Subm) error) (submdomain.Subm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[id]
	if !ok {
		return submdomain.Subm{}, submdomain.ErrSubmNotFound()
	}
	s = clone(s)
	if err := fn(&s); err != nil {
		return submdomain.Subm{}, err
	}
	s.Version++
	r.subms[id] = s
	return clone(s), nil
}

func (r *MemSubmRepo) ClaimSubm(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[id]
	if !ok {
		return submdomain.Subm{}, false, submdomain.ErrSubmNotFound()
	}
	if s.ClaimedBy != nil || s.Status != submdomain.StatusAwaitingCoach {
		return clone(s), false, nil
	}
	s.ClaimedBy = &coachUUID
	s.CoachUUID = &coachUUID
	s.ClaimedAt = &at
	s.Status = submdomain.StatusClaimed
	s.UpdatedAt = at
	s.Version++
	r.subms[id] = s
	return clone(s), true, nil
}

func (r *MemSubmRepo) ListSubms(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []submdomain.Subm{}
	for _, s := range r.subms {
		if f.Matches(s) {
			res = append(res, clone(s))
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

func (r *MemSubmRepo) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[id]
	if !ok || s.Status != submdomain.StatusDraft {
		return false, nil
	}
	delete(r.subms, id)
	return true, nil
}

func (r *MemSubmRepo) GetReview(ctx context.Context, id uuid.UUID) (submdomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return submdomain.Review{}, submdomain.ErrReviewNotFound()
	}
	return cloneReview(rev), nil
}

func (r *MemSubmRepo) GetReviewBySubm(ctx context.Context, submUUID uuid.UUID) (submdomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviewBySubm(submUUID)
	if !ok {
		return submdomain.Review{}, submdomain.ErrReviewNotFound()
	}
	return cloneReview(rev), nil
}

func (r *MemSubmRepo) reviewBySubm(submUUID uuid.UUID) (submdomain.Review, bool) {
	for _, rev := range r.reviews {
		if rev.SubmUUID == submUUID {
			return rev, true
		}
	}
	return submdomain.Review{}, false
}

func (r *MemSubmRepo) SaveReview(ctx context.Context, submUUID uuid.UUID, fn func(s submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error)) (submdomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[submUUID]
	if !ok {
		return submdomain.Review{}, submdomain.ErrSubmNotFound()
	}
	var existing *submdomain.Review
	if rev, ok := r.reviewBySubm(submUUID); ok {
		rev = cloneReview(rev)
		existing = &rev
	}
	rev, err := fn(clone(s), existing)
	if err != nil {
		return submdomain.Review{}, err
	}
	r.reviews[rev.UUID] = cloneReview(rev)
	return rev, nil
}

func (r *MemSubmRepo) PublishReview(ctx context.Context, reviewUUID uuid.UUID, fn func(*submdomain.Review, *submdomain.Subm) error) (submdomain.Review, submdomain.Subm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[reviewUUID]
	if !ok {
		return submdomain.Review{}, submdomain.Subm{}, submdomain.ErrReviewNotFound()
	}
	s, ok := r.subms[rev.SubmUUID]
	if !ok {
		return submdomain.Review{}, submdomain.Subm{}, submdomain.ErrSubmNotFound()
	}
	rev, s = cloneReview(rev), clone(s)
	if err := fn(&rev, &s); err != nil {
		return submdomain.Review{}, submdomain.Subm{}, err
	}
	s.Version++

	// writes are staged and applied together so a fault leaves both records untouched
	tx := stagedWrites{}
	tx.reviews = append(tx.reviews, rev)
	if r.publishFault != nil {
		if err := r.publishFault(); err != nil {
			return submdomain.Review{}, submdomain.Subm{}, err
		}
	}
	tx.subms = append(tx.subms, s)
	tx.apply(r)

	return cloneReview(rev), clone(s), nil
}

type stagedWrites struct {
	subms   []submdomain.Subm
	reviews []submdomain.Review
}

func (w stagedWrites) apply(r *MemSubmRepo) {
	for _, rev := range w.reviews {
		r.reviews[rev.UUID] = rev
	}
	for _, s := range w.subms {
		r.subms[s.UUID] = s
	}
}

func clone(s submdomain.Subm) submdomain.Subm {
	s.CoachUUID = clonePtr(s.CoachUUID)
	s.ClaimedBy = clonePtr(s.ClaimedBy)
	s.ReviewUUID = clonePtr(s.ReviewUUID)
	s.SubmittedAt = clonePtr(s.SubmittedAt)
	s.SlaDeadline = clonePtr(s.SlaDeadline)
	s.ClaimedAt = clonePtr(s.ClaimedAt)
	s.CompletedAt = clonePtr(s.CompletedAt)
	s.ReviewedAt = clonePtr(s.ReviewedAt)
	s.FollowupRequestedAt = clonePtr(s.FollowupRequestedAt)
	s.FollowupDeadline = clonePtr(s.FollowupDeadline)
	return s
}

func cloneReview(r submdomain.Review) submdomain.Review {
	r.Drills = slices.Clone(r.Drills)
	r.PublishedAt = clonePtr(r.PublishedAt)
	r.RepublishedAt = clonePtr(r.RepublishedAt)
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
