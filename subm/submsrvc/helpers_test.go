package submsrvc_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coachhub/backend/notify"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submmemrepo"
	"github.com/coachhub/backend/subm/submsrvc"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type sentNotification struct {
	Kind      notify.Kind
	Recipient uuid.UUID // uuid.Nil for the inbox
	Payload   notify.Payload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, kind notify.Kind, recipient uuid.UUID, p notify.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Kind: kind, Recipient: recipient, Payload: p})
}

func (n *recordingNotifier) NotifyInbox(ctx context.Context, kind notify.Kind, p notify.Payload) {
	n.Notify(ctx, kind, uuid.Nil, p)
}

func (n *recordingNotifier) last() sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type userDirectory map[uuid.UUID]user.User

func (d userDirectory) GetUserByUUID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := d[id]
	if !ok {
		return user.User{}, srvcerror.ErrNotFound("user not found")
	}
	return u, nil
}

type fakeVideoStore struct {
	mu      sync.Mutex
	objects map[string]bool
}

var _ submcmd.VideoStore = (*fakeVideoStore)(nil)

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{objects: map[string]bool{}}
}

func (s *fakeVideoStore) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
}

func (s *fakeVideoStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeVideoStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://videos.example.com/" + key + "?sig=1", nil
}

func (s *fakeVideoStore) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *fakeVideoStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type env struct {
	srvc     *submsrvc.SubmSrvc
	repo     *submmemrepo.MemSubmRepo
	clock    *clock
	notifier *recordingNotifier
	users    userDirectory
	videos   *fakeVideoStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		repo:     submmemrepo.NewMemSubmRepo(),
		clock:    newClock(),
		notifier: &recordingNotifier{},
		users:    userDirectory{},
		videos:   newFakeVideoStore(),
	}
	e.srvc = submsrvc.NewSubmSrvc(e.repo, e.users, e.notifier, submsrvc.Config{
		Policy: submdomain.DefaultPolicy(),
		Videos: e.videos,
		Now:    e.clock.Now,
	})
	return e
}

func (e *env) newUser(role auth.Role) auth.Identity {
	id := auth.Identity{UserUUID: uuid.New(), Role: role}
	e.users[id.UserUUID] = user.User{UUID: id.UserUUID, Username: id.UserUUID.String(), Role: role}
	return id
}

func (e *env) createSubm(t *testing.T, athlete auth.Identity) submdomain.Subm {
	t.Helper()
	s, err := e.srvc.CreateSubm.Handle(context.Background(), submcmd.CreateSubmParams{
		Athlete: athlete,
		Content: submdomain.Content{Title: "Tennis serve", Sport: "tennis", Goals: "more spin"},
	})
	require.NoError(t, err)
	return s
}

func (e *env) uploadedSubm(t *testing.T, athlete auth.Identity) submdomain.Subm {
	t.Helper()
	s := e.createSubm(t, athlete)
	e.videos.put(s.Video.StoragePath)
	s, err := e.srvc.CompleteUpload.Handle(context.Background(), submcmd.CompleteUploadParams{
		SubmUUID: s.UUID,
		Athlete:  athlete,
		Video:    submdomain.VideoRef{DurationSec: 42},
	})
	require.NoError(t, err)
	return s
}

// inReviewSubm returns a submission claimed by coach and in review.
func (e *env) inReviewSubm(t *testing.T, athlete, coach auth.Identity) submdomain.Subm {
	t.Helper()
	ctx := context.Background()
	s := e.uploadedSubm(t, athlete)
	_, err := e.srvc.ClaimSubm.Handle(ctx, submcmd.ClaimSubmParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	s, err = e.srvc.MarkInReview.Handle(ctx, submcmd.MarkInReviewParams{SubmUUID: s.UUID, Coach: coach})
	require.NoError(t, err)
	return s
}

// publishedSubm returns a completed submission and its published review.
func (e *env) publishedSubm(t *testing.T, athlete, coach auth.Identity) (submdomain.Subm, submdomain.Review) {
	t.Helper()
	ctx := context.Background()
	s := e.inReviewSubm(t, athlete, coach)
	rev, err := e.srvc.SaveReviewDraft.Handle(ctx, submcmd.SaveReviewDraftParams{
		SubmUUID: s.UUID,
		Coach:    coach,
		Content:  submdomain.ReviewContent{Summary: "solid toss", Drills: []string{"toss drill"}},
	})
	require.NoError(t, err)
	res, err := e.srvc.PublishReview.Handle(ctx, submcmd.PublishReviewParams{ReviewUUID: rev.UUID, Coach: coach})
	require.NoError(t, err)
	return res.Subm, res.Review
}
