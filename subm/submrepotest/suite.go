// Package submrepotest holds the behaviour every submission store must share.
package submrepotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture provides a fresh store and a way to create users it can reference.
type Fixture struct {
	Repo    submsrvc.SubmRepo
	NewUser func(t *testing.T, role auth.Role) uuid.UUID
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Run exercises a store created by newFixture for every subtest.
func Run(t *testing.T, newFixture func(t *testing.T) Fixture) {
	t.Run("StoreAndGet", func(t *testing.T) { testStoreAndGet(t, newFixture(t)) })
	t.Run("ClaimIsExclusive", func(t *testing.T) { testClaimIsExclusive(t, newFixture(t)) })
	t.Run("UpdateAbortsOnError", func(t *testing.T) { testUpdateAbortsOnError(t, newFixture(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newFixture(t)) })
	t.Run("ReviewLifecycle", func(t *testing.T) { testReviewLifecycle(t, newFixture(t)) })
	t.Run("ConcurrentFirstSaves", func(t *testing.T) { testConcurrentFirstSaves(t, newFixture(t)) })
	t.Run("SaveRacesPublish", func(t *testing.T) { testSaveRacesPublish(t, newFixture(t)) })
	t.Run("DeleteDraft", func(t *testing.T) { testDeleteDraft(t, newFixture(t)) })
}

func newAwaiting(t *testing.T, f Fixture) (submdomain.Subm, auth.Identity) {
	t.Helper()
	athlete := auth.Identity{UserUUID: f.NewUser(t, auth.RoleAthlete), Role: auth.RoleAthlete}
	s, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "Serve"}, nil, t0)
	require.NoError(t, err)
	require.NoError(t, s.CompleteUpload(athlete, submdomain.VideoRef{DurationSec: 30}, t0, submdomain.DefaultPolicy()))
	require.NoError(t, f.Repo.StoreSubm(context.Background(), s))
	return s, athlete
}

func testStoreAndGet(t *testing.T, f Fixture) {
	ctx := context.Background()
	_, err := f.Repo.GetSubm(ctx, uuid.New())
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))

	s, _ := newAwaiting(t, f)
	got, err := f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, s.UUID, got.UUID)
	assert.Equal(t, s.AthleteUUID, got.AthleteUUID)
	assert.Equal(t, "Serve", got.Title)
	assert.Equal(t, 30, got.Video.DurationSec)
	assert.Equal(t, submdomain.StatusAwaitingCoach, got.Status)
	require.NotNil(t, got.SlaDeadline)
	assert.True(t, s.SlaDeadline.Equal(*got.SlaDeadline))
	assert.Nil(t, got.ClaimedBy)
}

func testClaimIsExclusive(t *testing.T, f Fixture) {
	ctx := context.Background()
	s, _ := newAwaiting(t, f)

	const n = 8
	coaches := make([]uuid.UUID, n)
	for i := range coaches {
		coaches[i] = f.NewUser(t, auth.RoleCoach)
	}

	var wg sync.WaitGroup
	won := make([]bool, n)
	errs := make([]error, n)
	for i := range coaches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, won[i], errs[i] = f.Repo.ClaimSubm(ctx, s.UUID, coaches[i], t0.Add(time.Minute))
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner uuid.UUID
	for i := range coaches {
		require.NoError(t, errs[i])
		if won[i] {
			winners++
			winner = coaches[i]
		}
	}
	require.Equal(t, 1, winners)

	got, err := f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	require.NotNil(t, got.ClaimedBy)
	assert.Equal(t, winner, *got.ClaimedBy)
	assert.Equal(t, submdomain.StatusClaimed, got.Status)

	cur, ok, err := f.Repo.ClaimSubm(ctx, s.UUID, winner, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, t0.Add(time.Minute).Equal(*cur.ClaimedAt))

	_, _, err = f.Repo.ClaimSubm(ctx, uuid.New(), winner, t0)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}

func testUpdateAbortsOnError(t *testing.T, f Fixture) {
	ctx := context.Background()
	s, _ := newAwaiting(t, f)
	boom := errors.New("boom")

	_, err := f.Repo.UpdateSubm(ctx, s.UUID, func(s *submdomain.Subm) error {
		s.Title = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Serve", got.Title)

	updated, err := f.Repo.UpdateSubm(ctx, s.UUID, func(s *submdomain.Subm) error {
		s.Title = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)
	assert.Greater(t, updated.Version, got.Version)
}

func testListFilters(t *testing.T, f Fixture) {
	ctx := context.Background()
	a, athlete := newAwaiting(t, f)
	b, _ := newAwaiting(t, f)
	coach := f.NewUser(t, auth.RoleCoach)
	_, ok, err := f.Repo.ClaimSubm(ctx, b.UUID, coach, t0)
	require.NoError(t, err)
	require.True(t, ok)

	awaiting := submdomain.StatusAwaitingCoach
	queue, err := f.Repo.ListSubms(ctx, submdomain.SubmFilter{Status: &awaiting})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, a.UUID, queue[0].UUID)

	mine, err := f.Repo.ListSubms(ctx, submdomain.SubmFilter{AthleteUUID: &athlete.UserUUID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.UUID, mine[0].UUID)

	claimed, err := f.Repo.ListSubms(ctx, submdomain.SubmFilter{ClaimedBy: &coach})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, b.UUID, claimed[0].UUID)
}

func testReviewLifecycle(t *testing.T, f Fixture) {
	ctx := context.Background()
	s, _ := newAwaiting(t, f)
	coach := auth.Identity{UserUUID: f.NewUser(t, auth.RoleCoach), Role: auth.RoleCoach}
	_, ok, err := f.Repo.ClaimSubm(ctx, s.UUID, coach.UserUUID, t0)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.Repo.UpdateSubm(ctx, s.UUID, func(s *submdomain.Subm) error {
		return s.StartReview(coach, t0)
	})
	require.NoError(t, err)

	_, err = f.Repo.GetReviewBySubm(ctx, s.UUID)
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))

	reviewUUID := uuid.New()
	save := func(summary string) submdomain.Review {
		rev, err := f.Repo.SaveReview(ctx, s.UUID, func(cur submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error) {
			content := submdomain.ReviewContent{Summary: summary, Drills: []string{"shadow swings"}}
			if existing == nil {
				return submdomain.NewReviewDraft(reviewUUID, &cur, coach, content, t0), nil
			}
			if err := existing.Edit(&cur, coach, content, t0); err != nil {
				return submdomain.Review{}, err
			}
			return *existing, nil
		})
		require.NoError(t, err)
		return rev
	}
	save("first")
	rev := save("second")
	assert.Equal(t, reviewUUID, rev.UUID)

	bySubm, err := f.Repo.GetReviewBySubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, "second", bySubm.Summary)
	assert.Equal(t, []string{"shadow swings"}, bySubm.Drills)

	boom := errors.New("boom")
	_, _, err = f.Repo.PublishReview(ctx, reviewUUID, func(r *submdomain.Review, s *submdomain.Subm) error {
		if err := submdomain.Publish(r, s, coach, t0); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, err := f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusInReview, got.Status)
	gotRev, err := f.Repo.GetReview(ctx, reviewUUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusDraft, gotRev.Status)

	pubRev, pubSubm, err := f.Repo.PublishReview(ctx, reviewUUID, func(r *submdomain.Review, s *submdomain.Subm) error {
		return submdomain.Publish(r, s, coach, t0.Add(time.Hour))
	})
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusPublished, pubRev.Status)
	assert.Equal(t, submdomain.StatusComplete, pubSubm.Status)

	got, err = f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusComplete, got.Status)
	require.NotNil(t, got.ReviewUUID)
	assert.Equal(t, reviewUUID, *got.ReviewUUID)
	gotRev, err = f.Repo.GetReview(ctx, reviewUUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusPublished, gotRev.Status)
	require.NotNil(t, gotRev.PublishedAt)
	assert.True(t, t0.Add(time.Hour).Equal(*gotRev.PublishedAt))
}

func newInReview(t *testing.T, f Fixture) (submdomain.Subm, auth.Identity) {
	t.Helper()
	ctx := context.Background()
	s, _ := newAwaiting(t, f)
	coach := auth.Identity{UserUUID: f.NewUser(t, auth.RoleCoach), Role: auth.RoleCoach}
	_, ok, err := f.Repo.ClaimSubm(ctx, s.UUID, coach.UserUUID, t0)
	require.NoError(t, err)
	require.True(t, ok)
	s, err = f.Repo.UpdateSubm(ctx, s.UUID, func(s *submdomain.Subm) error {
		return s.StartReview(coach, t0)
	})
	require.NoError(t, err)
	return s, coach
}

// saveDraft creates the review on the first call and edits it afterwards.
func saveDraft(ctx context.Context, f Fixture, submUUID uuid.UUID, coach auth.Identity, summary string) (submdomain.Review, error) {
	return f.Repo.SaveReview(ctx, submUUID, func(cur submdomain.Subm, existing *submdomain.Review) (submdomain.Review, error) {
		content := submdomain.ReviewContent{Summary: summary}
		if existing == nil {
			return submdomain.NewReviewDraft(uuid.New(), &cur, coach, content, t0), nil
		}
		if err := existing.Edit(&cur, coach, content, t0); err != nil {
			return submdomain.Review{}, err
		}
		return *existing, nil
	})
}

func testConcurrentFirstSaves(t *testing.T, f Fixture) {
	ctx := context.Background()
	s, coach := newInReview(t, f)

	const n = 4
	var wg sync.WaitGroup
	revs := make([]submdomain.Review, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			revs[i], errs[i] = saveDraft(ctx, f, s.UUID, coach, fmt.Sprintf("draft %d", i))
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, revs[0].UUID, revs[i].UUID, "one review per submission")
	}
	got, err := f.Repo.GetReviewBySubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, revs[0].UUID, got.UUID)
}

func testSaveRacesPublish(t *testing.T, f Fixture) {
	ctx := context.Background()
	s, coach := newInReview(t, f)
	draft, err := saveDraft(ctx, f, s.UUID, coach, "first")
	require.NoError(t, err)

	const n = 4
	var wg sync.WaitGroup
	saveErrs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, saveErrs[i] = saveDraft(ctx, f, s.UUID, coach, fmt.Sprintf("edit %d", i))
		}()
	}
	var pubErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, pubErr = f.Repo.PublishReview(ctx, draft.UUID, func(r *submdomain.Review, s *submdomain.Subm) error {
			return submdomain.Publish(r, s, coach, t0.Add(time.Hour))
		})
	}()
	wg.Wait()

	require.NoError(t, pubErr)
	for _, err := range saveErrs {
		if err != nil {
			// saves ordered after the publish are rejected by the domain, never by the store
			assert.True(t, srvcerror.HasCode(err, submdomain.ErrCodeInvalidTransition), "%v", err)
		}
	}
	got, err := f.Repo.GetSubm(ctx, s.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusComplete, got.Status)
	rev, err := f.Repo.GetReview(ctx, draft.UUID)
	require.NoError(t, err)
	assert.Equal(t, submdomain.ReviewStatusPublished, rev.Status)
}

func testDeleteDraft(t *testing.T, f Fixture) {
	ctx := context.Background()
	athlete := auth.Identity{UserUUID: f.NewUser(t, auth.RoleAthlete), Role: auth.RoleAthlete}
	d, err := submdomain.NewSubm(uuid.New(), athlete, submdomain.Content{Title: "draft"}, nil, t0)
	require.NoError(t, err)
	require.NoError(t, f.Repo.StoreSubm(ctx, d))

	s, _ := newAwaiting(t, f)
	ok, err := f.Repo.DeleteDraft(ctx, s.UUID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.Repo.DeleteDraft(ctx, d.UUID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = f.Repo.GetSubm(ctx, d.UUID)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}
