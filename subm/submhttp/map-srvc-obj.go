package submhttp

import (
	"context"
	"fmt"
	"time"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
)

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func (h *SubmHttpHandler) mapSubm(ctx context.Context, s submdomain.Subm) (Subm, error) {
	athlete, err := h.person(ctx, s.AthleteUUID)
	if err != nil {
		return Subm{}, err
	}
	var coach *Person
	if s.CoachUUID != nil {
		p, err := h.person(ctx, *s.CoachUUID)
		if err != nil {
			return Subm{}, err
		}
		coach = &p
	}
	var reviewUUID *string
	if s.ReviewUUID != nil {
		id := s.ReviewUUID.String()
		reviewUUID = &id
	}

	return Subm{
		SubmUUID:  s.UUID.String(),
		Status:    string(s.Status),
		Athlete:   athlete,
		Coach:     coach,
		Title:     s.Title,
		Sport:     s.Sport,
		Context:   s.Context,
		Goals:     s.Goals,
		Questions: s.Questions,
		Video: Video{
			StoragePath: s.Video.StoragePath,
			PlaybackURL: s.Video.PlaybackURL,
			DurationSec: s.Video.DurationSec,
		},
		ReviewUUID:        reviewUUID,
		FollowupRequested: s.FollowupRequested,
		SlaBreach:         s.SlaBreach,
		CreatedAt:         fmtTime(s.CreatedAt),
		UpdatedAt:         fmtTime(s.UpdatedAt),
		SubmittedAt:       fmtTimePtr(s.SubmittedAt),
		SlaDeadline:       fmtTimePtr(s.SlaDeadline),
		ClaimedAt:         fmtTimePtr(s.ClaimedAt),
		CompletedAt:       fmtTimePtr(s.CompletedAt),
		FollowupDeadline:  fmtTimePtr(s.FollowupDeadline),
	}, nil
}

func (h *SubmHttpHandler) mapReview(ctx context.Context, r submdomain.Review) (Review, error) {
	coach, err := h.person(ctx, r.CoachUUID)
	if err != nil {
		return Review{}, err
	}
	drills := r.Drills
	if drills == nil {
		drills = []string{}
	}
	return Review{
		ReviewUUID:    r.UUID.String(),
		SubmUUID:      r.SubmUUID.String(),
		Coach:         coach,
		Status:        string(r.Status),
		Summary:       r.Summary,
		Feedback:      r.Feedback,
		Drills:        drills,
		CreatedAt:     fmtTime(r.CreatedAt),
		UpdatedAt:     fmtTime(r.UpdatedAt),
		PublishedAt:   fmtTimePtr(r.PublishedAt),
		RepublishedAt: fmtTimePtr(r.RepublishedAt),
	}, nil
}

func displayNameCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("display_name:%s", id)
}

// person resolves a user's display name through nameCache.
func (h *SubmHttpHandler) person(ctx context.Context, id uuid.UUID) (Person, error) {
	key := displayNameCacheKey(id)
	if name, found := h.nameCache.Get(key); found {
		return Person{UUID: id.String(), DisplayName: name.(string)}, nil
	}

	res, err, _ := h.sfGroup.Do(key, func() (interface{}, error) {
		if name, found := h.nameCache.Get(key); found {
			return name, nil
		}
		u, err := h.users.GetUserByUUID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %s: %w", id, err)
		}
		name := u.DisplayName()
		h.nameCache.SetDefault(key, name)
		return name, nil
	})
	if err != nil {
		return Person{}, err
	}
	return Person{UUID: id.String(), DisplayName: res.(string)}, nil
}
