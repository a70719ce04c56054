package submdomain

import (
	"fmt"
	"time"

	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

// Content is the athlete-supplied description of what they want reviewed.
type Content struct {
	Title     string `json:"title" validate:"required,max=200"`
	Sport     string `json:"sport" validate:"max=100"`
	Context   string `json:"context" validate:"max=5000"`
	Goals     string `json:"goals" validate:"max=5000"`
	Questions string `json:"questions" validate:"max=5000"`
}

// VideoRef points at the uploaded video. StoragePath is the object key the
// athlete uploads to; it is assigned on creation.
type VideoRef struct {
	StoragePath string `json:"storage_path" validate:"omitempty,max=1024"`
	PlaybackURL string `json:"playback_url" validate:"omitempty,url,max=4096"`
	DurationSec int    `json:"duration_sec" validate:"gte=0,lte=3600"`
}

type Subm struct {
	UUID        uuid.UUID
	AthleteUUID uuid.UUID
	CoachUUID   *uuid.UUID // intended recipient; equals ClaimedBy once claimed
	ClaimedBy   *uuid.UUID

	Content
	Video VideoRef

	Status     Status
	ReviewUUID *uuid.UUID

	FollowupRequested bool
	SlaBreach         bool

	CreatedAt           time.Time
	UpdatedAt           time.Time
	SubmittedAt         *time.Time
	SlaDeadline         *time.Time
	ClaimedAt           *time.Time
	CompletedAt         *time.Time
	ReviewedAt          *time.Time
	FollowupRequestedAt *time.Time
	FollowupDeadline    *time.Time

	// Version increases on every stored write; document stores use it for optimistic locking.
	Version int64
}

func ptr[T any](v T) *T {
	return &v
}

// VideoKey is the object key an athlete uploads the video of a submission to.
func VideoKey(athleteUUID, submUUID uuid.UUID) string {
	return fmt.Sprintf("submissions/%s/%s/video", athleteUUID, submUUID)
}

// NewSubm creates a draft submission owned by athlete.
func NewSubm(id uuid.UUID, athlete auth.Identity, content Content, intendedCoach *uuid.UUID, now time.Time) (Subm, error) {
	if err := athlete.Require(auth.RoleAthlete); err != nil {
		return Subm{}, err
	}
	return Subm{
		UUID:        id,
		AthleteUUID: athlete.UserUUID,
		CoachUUID:   intendedCoach,
		Content:     content,
		Video:       VideoRef{StoragePath: VideoKey(athlete.UserUUID, id)},
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Subm) IsOwnedBy(id auth.Identity) bool {
	return s.AthleteUUID == id.UserUUID
}

func (s *Subm) IsClaimedBy(id auth.Identity) bool {
	return s.ClaimedBy != nil && *s.ClaimedBy == id.UserUUID
}

// CompleteUpload attaches the uploaded video and hands the submission to coaches.
func (s *Subm) CompleteUpload(athlete auth.Identity, video VideoRef, now time.Time, p Policy) error {
	if !s.IsOwnedBy(athlete) {
		return errNotOwner()
	}
	to, err := Transition(s.Status, EventUploadCompleted)
	if err != nil {
		return err
	}
	if video.StoragePath == "" {
		video.StoragePath = s.Video.StoragePath
	}
	if video.StoragePath != s.Video.StoragePath {
		return srvcerror.ErrInvalidRequest("storage_path must be the upload key assigned to the submission")
	}
	s.Video = video
	s.Status = to
	s.SubmittedAt = ptr(now)
	s.SlaDeadline = ptr(now.Add(p.SlaWindow))
	s.UpdatedAt = now
	return nil
}

// CheckClaim classifies a claim attempt by coach against the current record
// without mutating it. A nil error with alreadyHeld=true is an idempotent re-claim.
func (s *Subm) CheckClaim(coach auth.Identity) (alreadyHeld bool, err error) {
	if err := coach.Require(auth.RoleCoach); err != nil {
		return false, err
	}
	if s.ClaimedBy != nil {
		if *s.ClaimedBy == coach.UserUUID {
			return true, nil
		}
		return false, ErrClaimConflict()
	}
	if !CanTransition(s.Status, EventClaimed) {
		return false, ErrInvalidTransition(s.Status, EventClaimed)
	}
	return false, nil
}

// Claim assigns the submission to coach. Stores must apply it as a
// compare-and-swap on ClaimedBy being unset.
func (s *Subm) Claim(coach auth.Identity, now time.Time) (changed bool, err error) {
	held, err := s.CheckClaim(coach)
	if err != nil || held {
		return false, err
	}
	to, err := Transition(s.Status, EventClaimed)
	if err != nil {
		return false, err
	}
	s.ClaimedBy = ptr(coach.UserUUID)
	s.CoachUUID = ptr(coach.UserUUID)
	s.ClaimedAt = ptr(now)
	s.Status = to
	s.UpdatedAt = now
	return true, nil
}

// StartReview moves a claimed submission into review.
func (s *Subm) StartReview(coach auth.Identity, now time.Time) error {
	if !s.IsClaimedBy(coach) {
		return errNotClaimant()
	}
	to, err := Transition(s.Status, EventReviewStarted)
	if err != nil {
		return err
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// CheckReviewAuthor verifies coach may edit the review of this submission right now.
// A reopened submission's published review may be revised.
func (s *Subm) CheckReviewAuthor(coach auth.Identity) error {
	if !s.IsClaimedBy(coach) {
		return errNotClaimant()
	}
	switch s.Status {
	case StatusInReview, StatusReopened:
		return nil
	}
	return errReviewLocked(s.Status)
}

// RequestFollowup reopens a completed submission. review may be nil when none exists.
// Guards run in a fixed order so each rejection has a distinct reason.
func (s *Subm) RequestFollowup(athlete auth.Identity, review *Review, now time.Time, p Policy) error {
	if !s.IsOwnedBy(athlete) {
		return errNotOwner()
	}
	if review == nil || review.Status != ReviewStatusPublished || review.PublishedAt == nil {
		return ErrReviewNotReady()
	}
	if s.FollowupRequested {
		return ErrFollowupAlreadyRequested()
	}
	if now.Sub(*review.PublishedAt) > p.FollowupWindow {
		return ErrFollowupWindowExpired(int(p.FollowupWindow / (24 * time.Hour)))
	}
	to, err := Transition(s.Status, EventFollowupRequested)
	if err != nil {
		return err
	}
	s.Status = to
	s.FollowupRequested = true
	s.FollowupRequestedAt = ptr(now)
	s.FollowupDeadline = ptr(now.Add(p.FollowupResponseWindow))
	// the flag now tracks FollowupDeadline
	s.SlaBreach = false
	s.UpdatedAt = now
	return nil
}

// Patch holds the content fields that may be changed after creation. Nil means unchanged.
type Patch struct {
	Title     *string `json:"title" validate:"omitempty,max=200"`
	Sport     *string `json:"sport" validate:"omitempty,max=100"`
	Context   *string `json:"context" validate:"omitempty,max=5000"`
	Goals     *string `json:"goals" validate:"omitempty,max=5000"`
	Questions *string `json:"questions" validate:"omitempty,max=5000"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Sport == nil && p.Context == nil && p.Goals == nil && p.Questions == nil
}

// ApplyPatch updates content fields. Allowed for the owning athlete or the claiming
// coach in any status; status, ownership and timing are never patchable.
func (s *Subm) ApplyPatch(caller auth.Identity, p Patch, now time.Time) error {
	if !s.IsOwnedBy(caller) && !s.IsClaimedBy(caller) {
		return errNotParticipant()
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Sport != nil {
		s.Sport = *p.Sport
	}
	if p.Context != nil {
		s.Context = *p.Context
	}
	if p.Goals != nil {
		s.Goals = *p.Goals
	}
	if p.Questions != nil {
		s.Questions = *p.Questions
	}
	s.UpdatedAt = now
	return nil
}

// Reassign is the admin override that replaces the claiming coach.
func (s *Subm) Reassign(admin auth.Identity, newCoach uuid.UUID, now time.Time) error {
	if err := admin.Require(auth.RoleAdmin); err != nil {
		return err
	}
	switch s.Status {
	case StatusClaimed, StatusInReview, StatusReopened:
	default:
		return errNotReassignable(s.Status)
	}
	s.ClaimedBy = ptr(newCoach)
	s.CoachUUID = ptr(newCoach)
	s.ClaimedAt = ptr(now)
	s.UpdatedAt = now
	return nil
}

// IsSlaBreached reports whether a response deadline has passed while the coach still owes a response.
func (s *Subm) IsSlaBreached(now time.Time) bool {
	switch s.Status {
	case StatusAwaitingCoach, StatusClaimed, StatusInReview:
		return s.SlaDeadline != nil && now.After(*s.SlaDeadline)
	case StatusReopened:
		return s.FollowupDeadline != nil && now.After(*s.FollowupDeadline)
	}
	return false
}
