package submdomain

import (
	"time"

	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusPublished ReviewStatus = "published"
)

// ReviewContent is what the coach writes.
type ReviewContent struct {
	Summary  string   `json:"summary" validate:"max=2000"`
	Feedback string   `json:"feedback" validate:"max=20000"`
	Drills   []string `json:"drills" validate:"max=20,dive,required,max=500"`
}

type Review struct {
	UUID      uuid.UUID
	SubmUUID  uuid.UUID
	CoachUUID uuid.UUID
	Status    ReviewStatus

	ReviewContent

	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   *time.Time
	RepublishedAt *time.Time
}

// NewReviewDraft starts the review of s. The caller must have passed s.CheckReviewAuthor.
func NewReviewDraft(id uuid.UUID, s *Subm, coach auth.Identity, content ReviewContent, now time.Time) Review {
	return Review{
		UUID:          id,
		SubmUUID:      s.UUID,
		CoachUUID:     coach.UserUUID,
		Status:        ReviewStatusDraft,
		ReviewContent: content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Edit replaces the review content. A published review may only change
// while its submission is reopened.
func (r *Review) Edit(s *Subm, coach auth.Identity, content ReviewContent, now time.Time) error {
	if err := s.CheckReviewAuthor(coach); err != nil {
		return err
	}
	if r.Status == ReviewStatusPublished && s.Status != StatusReopened {
		return errReviewLocked(s.Status)
	}
	r.ReviewContent = content
	r.CoachUUID = coach.UserUUID
	r.UpdatedAt = now
	return nil
}

// Publish finalizes r and completes s. Both records are mutated together and
// must be persisted in a single unit of work; on error neither is changed.
func Publish(r *Review, s *Subm, coach auth.Identity, now time.Time) error {
	if r.SubmUUID != s.UUID {
		return ErrReviewNotFound()
	}
	if !s.IsClaimedBy(coach) {
		return errNotClaimant()
	}
	to, err := Transition(s.Status, EventReviewPublished)
	if err != nil {
		return err
	}

	if r.Status == ReviewStatusPublished {
		r.RepublishedAt = ptr(now)
	} else {
		r.Status = ReviewStatusPublished
		r.PublishedAt = ptr(now)
	}
	r.CoachUUID = coach.UserUUID
	r.UpdatedAt = now

	s.Status = to
	s.ReviewUUID = ptr(r.UUID)
	s.CompletedAt = ptr(now)
	s.ReviewedAt = ptr(now)
	s.UpdatedAt = now
	return nil
}
