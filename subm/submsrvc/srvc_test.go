package submsrvc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coachhub/backend/notify"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycleEndToEnd(t *testing.T) {
	// test plan:
	// 1. athlete creates a submission, expect draft
	// 2. athlete completes the upload, expect awaiting_coach
	// 3. coach claims, expect claimed by the coach
	// 4. coach marks in review
	// 5. coach drafts and publishes a review, expect complete with review linked
	// 6. athlete requests a follow-up 3 days later, expect reopened with a 48h deadline
	// 7. coach republishes, expect complete again
	// every step is re-read from the store and compared
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	s := e.createSubm(t, athlete)
	get := func() submdomain.Subm {
		got, err := e.srvc.GetSubm.Handle(ctx, submquery.GetSubmParams{SubmUUID: s.UUID, Caller: athlete})
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, submdomain.StatusDraft, s.Status)
	assert.Equal(t, submdomain.StatusDraft, get().Status)

	e.videos.put(s.Video.StoragePath)
	s, err := e.srvc.CompleteUpload.Handle(ctx, submcmd.CompleteUploadParams{SubmUUID: s.UUID, Athlete: athlete})
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusAwaitingCoach, s.Status)
	assert.Contains(t, s.Video.PlaybackURL, s.Video.StoragePath)
	got := get()
	assert.Equal(t, submdomain.StatusAwaitingCoach, got.Status)
	assert.Equal(t, e.clock.Now().Add(48*time.Hour), *got.SlaDeadline)
	assert.Equal(t, notify.KindSubmissionReceived, e.notifier.last().Kind)
	assert.Equal(t, uuid.Nil, e.notifier.last().Recipient)

	e.clock.Advance(time.Hour)
	s, err = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	got = get()
	assert.Equal(t, submdomain.StatusClaimed, got.Status)
	require.NotNil(t, got.ClaimedBy)
	assert.Equal(t, coach.UserUUID, *got.ClaimedBy)

	s, err = e.srvc.MarkInReview.Handle(ctx, submcmd.MarkInReviewParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusInReview, get().Status)

	rev, err := e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{
		SubmUUID: s.UUID,
		Coach:    coach,
		Content:  submdomain.ReviewContent{Summary: "good base", Feedback: "toss higher"},
	})
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusDraft, rev.Status)

	// athlete cannot see the draft yet
	_, err = e.srvc.GetReview.Handle(ctx, submquery.GetReviewParams{SubmUUID: s.UUID, Caller: athlete})
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeReviewNotReady))

	publishedAt := e.clock.Advance(time.Hour)
	res, err := e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusPublished, res.Review.Status)
	got = get()
	assert.Equal(t, submdomain.StatusComplete, got.Status)
	require.NotNil(t, got.ReviewUUID)
	assert.Equal(t, rev.UUID, *got.ReviewUUID)
	assert.Equal(t, publishedAt, *got.CompletedAt)
	gotRev, err := e.srvc.GetReview.Handle(ctx, submquery.GetReviewParams{ReviewUUID: rev.UUID, Caller: athlete})
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusPublished, gotRev.Status)
	assert.Equal(t, notify.KindReviewPublished, e.notifier.last().Kind)
	assert.Equal(t, athlete.UserUUID, e.notifier.last().Recipient)

	requestedAt := e.clock.Advance(3 * 24 * time.Hour)
	_, err = e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: athlete})
	require.NoError(t, err)
	got = get()
	assert.Equal(t, submdomain.StatusReopened, got.Status)
	assert.True(t, got.FollowupRequested)
	assert.Equal(t, requestedAt.Add(48*time.Hour), *got.FollowupDeadline)
	assert.Equal(t, notify.KindFollowupRequested, e.notifier.last().Kind)
	assert.Equal(t, coach.UserUUID, e.notifier.last().Recipient)

	_, err = e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{
		SubmUUID: s.UUID,
		Coach:    coach,
		Content:  submdomain.ReviewContent{Summary: "good base", Feedback: "answering your question"},
	})
	require.NoError(t, err)

	republishedAt := e.clock.Advance(time.Hour)
	res, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)
	assert.Equal(t, publishedAt, *res.Review.PublishedAt)
	assert.Equal(t, republishedAt, *res.Review.RepublishedAt)
	assert.Equal(t, "answering your question", res.Review.Feedback)
	assert.Equal(t, submdomain.StatusComplete, get().Status)
}

func TestClaimExclusivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.uploadedSubm(t, e.newUser(auth.RoleAthlete))

	const n = 20
	coaches := make([]auth.Identity, n)
	for i := range coaches {
		coaches[i] = e.newUser(auth.RoleCoach)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := range coaches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coaches[i]})
		}(i)
	}
	close(start)
	wg.Wait()

	var winner *auth.Identity
	conflicts := 0
	for i, err := range errs {
		if err == nil {
			require.Nil(t, winner, "more than one claim succeeded")
			winner = &coaches[i]
			continue
		}
		require.True(t, srvcerror.HasCode(err, submdomain.ErrCodeClaimConflict), "unexpected error: %v", err)
		conflicts++
	}
	require.NotNil(t, winner)
	assert.Equal(t, n-1, conflicts)

	got, err := e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, winner.UserUUID, *got.ClaimedBy)
}

func TestClaimIdempotence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.uploadedSubm(t, e.newUser(auth.RoleAthlete))
	coach := e.newUser(auth.RoleCoach)

	claimedAt := e.clock.Now()
	first, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	again, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	assert.Equal(t, claimedAt, *again.ClaimedAt)
	assert.Equal(t, first.Version, again.Version)

	// still claimable-idempotent after the review has started
	_, err = e.srvc.MarkInReview.Handle(ctx, submcmd.MarkInReviewParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	again, err = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusInReview, again.Status)
	assert.Equal(t, claimedAt, *again.ClaimedAt)
}

func TestClaimRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)

	draft := e.createSubm(t, athlete)
	_, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: draft.UUID, Coach: e.newUser(auth.RoleCoach)})
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition))

	s := e.uploadedSubm(t, athlete)
	_, err = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: athlete})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, err = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: uuid.New(), Coach: e.newUser(auth.RoleCoach)})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}

func TestPublishAtomicity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	s := e.inReviewSubm(t, athlete, coach)

	rev, err := e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{
		SubmUUID: s.UUID, Coach: coach, Content: submdomain.ReviewContent{Summary: "x"},
	})
	require.NoError(t, err)

	fault := errors.New("connection lost between writes")
	e.repo.InjectPublishFault(func() error { return fault })
	sentBefore := len(e.notifier.sent)

	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.ErrorIs(t, err, fault)

	gotSubm, err := e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	gotRev, err := e.repo.GetReview(ctx, rev.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusInReview, gotSubm.Status)
	assert.Nil(t, gotSubm.ReviewUUID)
	assert.Equal(t, submdomain.ReviewStatusDraft, gotRev.Status)
	assert.Nil(t, gotRev.PublishedAt)
	assert.Len(t, e.notifier.sent, sentBefore, "no notification for a failed publish")

	e.repo.InjectPublishFault(nil)
	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)

	gotSubm, err = e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	gotRev, err = e.repo.GetReview(ctx, rev.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusComplete, gotSubm.Status)
	assert.Equal(t, rev.UUID, *gotSubm.ReviewUUID)
	assert.Equal(t, submdomain.ReviewStatusPublished, gotRev.Status)
}

func TestPublishRequiresInReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	s := e.uploadedSubm(t, athlete)
	_, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)

	// a claimed but not yet opened submission takes no review
	_, err = e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{SubmUUID: s.UUID, Coach: coach})
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition))

	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: uuid.New(), Coach: coach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}

func TestFollowupSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	s, rev := e.publishedSubm(t, athlete, coach)

	e.clock.Advance(24 * time.Hour)
	first, err := e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: athlete})
	require.NoError(t, err)
	deadline := *first.FollowupDeadline

	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	_, err = e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: athlete})
	require.True(t, srvcerror.HasCode(err, submdomain.ErrCodeFollowupAlreadyRequested))

	got, err := e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusComplete, got.Status)
	assert.Equal(t, deadline, *got.FollowupDeadline)
}

func TestFollowupWindowBoundary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	late, _ := e.publishedSubm(t, athlete, coach)
	onTime, _ := e.publishedSubm(t, athlete, coach)
	publishedAt := e.clock.Now()

	e.clock.Advance(6*24*time.Hour + 23*time.Hour)
	_, err := e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: onTime.UUID, Athlete: athlete})
	require.NoError(t, err)

	e.clock.Advance(publishedAt.Add(7*24*time.Hour + time.Second).Sub(e.clock.Now()))
	_, err = e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: late.UUID, Athlete: athlete})
	require.True(t, srvcerror.HasCode(err, submdomain.ErrCodeFollowupWindowExpired))

	got, err := e.repo.GetSubm(ctx, late.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusComplete, got.Status)
	assert.False(t, got.FollowupRequested)
}

func TestFollowupGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	s := e.inReviewSubm(t, athlete, coach)
	_, err := e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: athlete})
	assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeReviewNotReady))

	_, err = e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: e.newUser(auth.RoleAthlete)})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
}

func TestOwnershipEnforced(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	other := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	otherCoach := e.newUser(auth.RoleCoach)

	draft := e.createSubm(t, athlete)
	e.videos.put(draft.Video.StoragePath)
	_, err := e.srvc.CompleteUpload.Handle(ctx, submcmd.CompleteUploadParams{SubmUUID: draft.UUID, Athlete: other})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, err = e.srvc.CreateSubm.Handle(ctx, submcmd.CreateSubmParams{Athlete: coach, Content: submdomain.Content{Title: "x"}})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	s := e.uploadedSubm(t, athlete)
	_, err = e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)

	_, err = e.srvc.MarkInReview.Handle(ctx, submcmd.MarkInReviewParams{SubmUUID: s.UUID, Coach: otherCoach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	title := "hijacked"
	_, err = e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{SubmUUID: s.UUID, Caller: other, Patch: submdomain.Patch{Title: &title}})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	_, err = e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{SubmUUID: s.UUID, Caller: otherCoach, Patch: submdomain.Patch{Title: &title}})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, err = e.srvc.MarkInReview.Handle(ctx, submcmd.MarkInReviewParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	_, err = e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{SubmUUID: s.UUID, Coach: otherCoach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	rev, err := e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: otherCoach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, err = e.srvc.GetSubm.Handle(ctx, submquery.GetSubmParams{SubmUUID: s.UUID, Caller: other})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	_, err = e.srvc.GetReview.Handle(ctx, submquery.GetReviewParams{ReviewUUID: rev.UUID, Caller: otherCoach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	got, err := e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Tennis serve", got.Title)
	assert.Equal(t, submdomain.StatusInReview, got.Status)
}

func TestPatchSubm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	s := e.inReviewSubm(t, athlete, coach)

	questions := "is my elbow too low?"
	got, err := e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{
		SubmUUID: s.UUID, Caller: athlete, Patch: submdomain.Patch{Questions: &questions},
	})
	require.NoError(t, err)
	assert.Equal(t, questions, got.Questions)
	assert.Equal(t, "Tennis serve", got.Title)

	sport := "padel"
	got, err = e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{
		SubmUUID: s.UUID, Caller: coach, Patch: submdomain.Patch{Sport: &sport},
	})
	require.NoError(t, err)
	assert.Equal(t, "padel", got.Sport)

	_, err = e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{SubmUUID: s.UUID, Caller: athlete})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))

	empty := ""
	_, err = e.srvc.PatchSubm.Handle(ctx, submcmd.PatchSubmParams{SubmUUID: s.UUID, Caller: athlete, Patch: submdomain.Patch{Title: &empty}})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))
}

func TestCompleteUploadRequiresObject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	s := e.createSubm(t, athlete)

	_, err := e.srvc.CompleteUpload.Handle(ctx, submcmd.CompleteUploadParams{SubmUUID: s.UUID, Athlete: athlete})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))

	got, err := e.repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusDraft, got.Status)
}

func TestCompleteUploadNotifiesIntendedCoach(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	s, err := e.srvc.CreateSubm.Handle(ctx, submcmd.CreateSubmParams{
		Athlete:   athlete,
		Content:   submdomain.Content{Title: "Backhand"},
		CoachUUID: &coach.UserUUID,
	})
	require.NoError(t, err)
	e.videos.put(s.Video.StoragePath)
	_, err = e.srvc.CompleteUpload.Handle(ctx, submcmd.CompleteUploadParams{SubmUUID: s.UUID, Athlete: athlete})
	require.NoError(t, err)

	last := e.notifier.last()
	assert.Equal(t, notify.KindSubmissionReceived, last.Kind)
	assert.Equal(t, coach.UserUUID, last.Recipient)
	assert.Equal(t, "Backhand", last.Payload.Title)
}

func TestCreateSubmValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.srvc.CreateSubm.Handle(context.Background(), submcmd.CreateSubmParams{
		Athlete: e.newUser(auth.RoleAthlete),
	})
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))
}

func TestCreateSubmIntendedCoachMustBeCoach(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	admin := e.newUser(auth.RoleAdmin)
	content := submdomain.Content{Title: "Serve", Sport: "tennis"}

	for _, coachUUID := range []uuid.UUID{uuid.New(), athlete.UserUUID, admin.UserUUID} {
		_, err := e.srvc.CreateSubm.Handle(ctx, submcmd.CreateSubmParams{
			Athlete:   athlete,
			Content:   content,
			CoachUUID: &coachUUID,
		})
		assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest), "%v", err)
	}

	subms, err := e.repo.ListSubms(ctx, submdomain.SubmFilter{})
	require.NoError(t, err)
	assert.Empty(t, subms)
}

func TestReassignSubm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	newCoach := e.newUser(auth.RoleCoach)
	admin := e.newUser(auth.RoleAdmin)
	s := e.inReviewSubm(t, athlete, coach)

	_, err := e.srvc.ReassignSubm.Handle(ctx, submcmd.ReassignSubmParams{SubmUUID: s.UUID, Admin: coach, CoachUUID: newCoach.UserUUID})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, err = e.srvc.ReassignSubm.Handle(ctx, submcmd.ReassignSubmParams{SubmUUID: s.UUID, Admin: admin, CoachUUID: athlete.UserUUID})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))

	got, err := e.srvc.ReassignSubm.Handle(ctx, submcmd.ReassignSubmParams{SubmUUID: s.UUID, Admin: admin, CoachUUID: newCoach.UserUUID})
	require.NoError(t, err)
	assert.Equal(t, newCoach.UserUUID, *got.ClaimedBy)
	assert.Equal(t, submdomain.StatusInReview, got.Status)
	assert.Equal(t, notify.KindSubmReassigned, e.notifier.last().Kind)
	assert.Equal(t, newCoach.UserUUID, e.notifier.last().Recipient)

	// the old coach lost authorship
	_, err = e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{SubmUUID: s.UUID, Coach: coach})
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	_, err = e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{SubmUUID: s.UUID, Coach: newCoach})
	assert.NoError(t, err)
}

func TestPurgeDrafts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)

	old := e.createSubm(t, athlete)
	e.videos.put(old.Video.StoragePath) // partial upload never completed
	uploaded := e.uploadedSubm(t, athlete)
	e.clock.Advance(80 * time.Hour)
	fresh := e.createSubm(t, athlete)

	res, err := e.srvc.PurgeDrafts.Handle(ctx, submcmd.PurgeDraftsParams{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{old.UUID}, res.Deleted)
	assert.Equal(t, 1, res.ObjectsDeleted)

	_, err = e.repo.GetSubm(ctx, old.UUID)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
	exists, _ := e.videos.Exists(ctx, old.Video.StoragePath)
	assert.False(t, exists)

	_, err = e.repo.GetSubm(ctx, fresh.UUID)
	assert.NoError(t, err)
	_, err = e.repo.GetSubm(ctx, uploaded.UUID)
	assert.NoError(t, err)
	exists, _ = e.videos.Exists(ctx, uploaded.Video.StoragePath)
	assert.True(t, exists)
}

func TestFlagSlaBreaches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	waiting := e.uploadedSubm(t, athlete)
	claimed := e.uploadedSubm(t, athlete)
	_, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: claimed.UUID, Coach: coach})
	require.NoError(t, err)
	done, _ := e.publishedSubm(t, athlete, coach)

	e.clock.Advance(47 * time.Hour)
	res, err := e.srvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Flagged)

	e.clock.Advance(2 * time.Hour)
	res, err = e.srvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{waiting.UUID, claimed.UUID}, res.Flagged)

	got, err := e.repo.GetSubm(ctx, waiting.UUID)
	require.NoError(t, err)
	assert.True(t, got.SlaBreach)
	assert.Equal(t, submdomain.StatusAwaitingCoach, got.Status, "flagging does not change status")
	got, err = e.repo.GetSubm(ctx, done.UUID)
	require.NoError(t, err)
	assert.False(t, got.SlaBreach)

	res, err = e.srvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Flagged)
}

func TestReopenedSubmCanBeFlaggedAgain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)
	s := e.inReviewSubm(t, athlete, coach)

	e.clock.Advance(49 * time.Hour)
	res, err := e.srvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{s.UUID}, res.Flagged)

	rev, err := e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{
		SubmUUID: s.UUID,
		Coach:    coach,
		Content:  submdomain.ReviewContent{Summary: "late but thorough"},
	})
	require.NoError(t, err)
	_, err = e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)

	reopened, err := e.srvc.RequestFollowup.Handle(ctx, submcmd.RequestFollowupParams{SubmUUID: s.UUID, Athlete: athlete})
	require.NoError(t, err)
	assert.False(t, reopened.SlaBreach)

	e.clock.Advance(48*time.Hour + time.Second)
	res, err = e.srvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s.UUID}, res.Flagged)
}

func TestListSubms(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	athlete := e.newUser(auth.RoleAthlete)
	other := e.newUser(auth.RoleAthlete)
	coach := e.newUser(auth.RoleCoach)

	mine := e.uploadedSubm(t, athlete)
	e.clock.Advance(time.Minute)
	theirs := e.uploadedSubm(t, other)
	_, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: theirs.UUID, Coach: coach})
	require.NoError(t, err)

	list, err := e.srvc.ListSubms.Handle(ctx, submquery.ListSubmsParams{Caller: athlete})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.UUID, list[0].UUID)

	queue, err := e.srvc.ListSubms.Handle(ctx, submquery.ListSubmsParams{Caller: coach})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, mine.UUID, queue[0].UUID)

	claimed, err := e.srvc.ListSubms.Handle(ctx, submquery.ListSubmsParams{Caller: coach, Mine: true})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, theirs.UUID, claimed[0].UUID)

	all, err := e.srvc.ListSubms.Handle(ctx, submquery.ListSubmsParams{Caller: e.newUser(auth.RoleAdmin)})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, theirs.UUID, all[0].UUID, "newest first")
}
