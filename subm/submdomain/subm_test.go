package submdomain_test

import (
	"testing"
	"time"

	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func identity(role auth.Role) auth.Identity {
	return auth.Identity{UserUUID: uuid.New(), Role: role}
}

// submInReview returns a submission claimed by coach and opened for review.
func submInReview(t *testing.T, athlete, coach auth.Identity) submdomain.Subm {
	t.Helper()
	p := submdomain.DefaultPolicy()
	s, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "Serve"}, nil, t0)
	require.NoError(t, err)
	require.NoError(t, s.CompleteUpload(athlete, submdomain.VideoRef{DurationSec: 40}, t0, p))
	changed, err := s.Claim(coach, t0)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, s.StartReview(coach, t0))
	return s
}

func TestNewSubmRequiresAthlete(t *testing.T) {
	_, err := submdomain.NewSubm(uuid.New(), identity(auth.RoleCoach), submdomain.Content{Title: "x"}, nil, t0)
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
}

func TestCompleteUploadSetsSlaDeadline(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	s, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "x"}, nil, t0)
	require.NoError(t, err)

	err = s.CompleteUpload(identity(auth.RoleAthlete), submdomain.VideoRef{}, t0, submdomain.DefaultPolicy())
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	assert.Equal(t, submdomain.StatusDraft, s.Status)

	require.NoError(t, s.CompleteUpload(athlete, submdomain.VideoRef{}, t0, submdomain.DefaultPolicy()))
	assert.Equal(t, submdomain.StatusAwaitingCoach, s.Status)
	require.NotNil(t, s.SlaDeadline)
	assert.Equal(t, t0.Add(48*time.Hour), *s.SlaDeadline)
}

func TestClaimClassification(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	coach := identity(auth.RoleCoach)
	other := identity(auth.RoleCoach)

	s, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "x"}, nil, t0)
	require.NoError(t, err)

	_, err = s.Claim(coach, t0)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition), "draft cannot be claimed")

	require.NoError(t, s.CompleteUpload(athlete, submdomain.VideoRef{}, t0, submdomain.DefaultPolicy()))

	_, err = s.Claim(athlete, t0)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	changed, err := s.Claim(coach, t0)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Claim(coach, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, t0, *s.ClaimedAt)

	_, err = s.Claim(other, t0)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeClaimConflict))
	assert.Equal(t, coach.UserUUID, *s.ClaimedBy)
}

func TestPublishAndRepublish(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	coach := identity(auth.RoleCoach)
	s := submInReview(t, athlete, coach)

	r := submdomain.NewReviewDraft(uuid.New(), &s, coach, submdomain.ReviewContent{Summary: "good"}, t0)

	err := submdomain.Publish(&r, &s, identity(auth.RoleCoach), t0)
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	assert.Equal(t, submdomain.ReviewStatusDraft, r.Status)
	assert.Equal(t, submdomain.StatusInReview, s.Status)

	t1 := t0.Add(time.Hour)
	require.NoError(t, submdomain.Publish(&r, &s, coach, t1))
	assert.Equal(t, submdomain.ReviewStatusPublished, r.Status)
	assert.Equal(t, t1, *r.PublishedAt)
	assert.Nil(t, r.RepublishedAt)
	assert.Equal(t, submdomain.StatusComplete, s.Status)
	assert.Equal(t, r.UUID, *s.ReviewUUID)

	err = submdomain.Publish(&r, &s, coach, t1)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition))

	err = r.Edit(&s, coach, submdomain.ReviewContent{Summary: "late edit"}, t1)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition))

	t2 := t1.Add(24 * time.Hour)
	require.NoError(t, s.RequestFollowup(athlete, &r, t2, submdomain.DefaultPolicy()))
	require.NoError(t, r.Edit(&s, coach, submdomain.ReviewContent{Summary: "revised"}, t2))

	t3 := t2.Add(time.Hour)
	require.NoError(t, submdomain.Publish(&r, &s, coach, t3))
	assert.Equal(t, t1, *r.PublishedAt)
	assert.Equal(t, t3, *r.RepublishedAt)
	assert.Equal(t, submdomain.StatusComplete, s.Status)
}

func TestFollowupGuardOrder(t *testing.T) {
	p := submdomain.DefaultPolicy()
	athlete := identity(auth.RoleAthlete)
	coach := identity(auth.RoleCoach)
	s := submInReview(t, athlete, coach)
	r := submdomain.NewReviewDraft(uuid.New(), &s, coach, submdomain.ReviewContent{}, t0)

	// not owner wins over every other failure
	err := s.RequestFollowup(identity(auth.RoleAthlete), nil, t0, p)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	err = s.RequestFollowup(athlete, nil, t0, p)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeReviewNotReady))

	err = s.RequestFollowup(athlete, &r, t0, p)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeReviewNotReady))

	require.NoError(t, submdomain.Publish(&r, &s, coach, t0))

	err = s.RequestFollowup(athlete, &r, t0.Add(7*24*time.Hour+time.Second), p)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeFollowupWindowExpired))
	assert.False(t, s.FollowupRequested)

	at := t0.Add(7 * 24 * time.Hour)
	s.SlaBreach = true
	require.NoError(t, s.RequestFollowup(athlete, &r, at, p))
	assert.Equal(t, submdomain.StatusReopened, s.Status)
	assert.False(t, s.SlaBreach, "reopening starts a new deadline")
	assert.Equal(t, at.Add(48*time.Hour), *s.FollowupDeadline)

	err = s.RequestFollowup(athlete, &r, at, p)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeFollowupAlreadyRequested))
}

func TestApplyPatch(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	coach := identity(auth.RoleCoach)
	s := submInReview(t, athlete, coach)

	title := "Backhand"
	err := s.ApplyPatch(identity(auth.RoleCoach), submdomain.Patch{Title: &title}, t0)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	assert.Equal(t, "Serve", s.Title)

	goals := "consistency"
	require.NoError(t, s.ApplyPatch(coach, submdomain.Patch{Goals: &goals}, t0))
	require.NoError(t, s.ApplyPatch(athlete, submdomain.Patch{Title: &title}, t0))
	assert.Equal(t, "Backhand", s.Title)
	assert.Equal(t, "consistency", s.Goals)
	assert.Equal(t, submdomain.StatusInReview, s.Status)
}

func TestReassign(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	coach := identity(auth.RoleCoach)
	s := submInReview(t, athlete, coach)
	newCoach := uuid.New()

	err := s.Reassign(coach, newCoach, t0)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	require.NoError(t, s.Reassign(identity(auth.RoleAdmin), newCoach, t0))
	assert.Equal(t, newCoach, *s.ClaimedBy)
	assert.Equal(t, submdomain.StatusInReview, s.Status)

	d, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "x"}, nil, t0)
	require.NoError(t, err)
	err = d.Reassign(identity(auth.RoleAdmin), newCoach, t0)
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition))
}

func TestIsSlaBreached(t *testing.T) {
	athlete := identity(auth.RoleAthlete)
	s, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "x"}, nil, t0)
	require.NoError(t, err)
	assert.False(t, s.IsSlaBreached(t0.Add(1000*time.Hour)))

	require.NoError(t, s.CompleteUpload(athlete, submdomain.VideoRef{}, t0, submdomain.DefaultPolicy()))
	assert.False(t, s.IsSlaBreached(t0.Add(48*time.Hour)))
	assert.True(t, s.IsSlaBreached(t0.Add(48*time.Hour+time.Second)))
}
