package submcmd

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/coachhub/backend/logger"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PurgeDraftsCmd decorator.CmdHandler[PurgeDraftsParams, PurgeDraftsResult]

type PurgeDraftsParams struct {
	// OlderThan overrides the policy's draft max age when positive.
	OlderThan time.Duration
}

type PurgeDraftsResult struct {
	Deleted        []uuid.UUID
	ObjectsDeleted int
}

// NewPurgeDraftsCmd returns the cleanup command for abandoned drafts. It bypasses
// the state machine: drafts are deleted, not transitioned. videos may be nil.
func NewPurgeDraftsCmd(
	listSubms listSubmsFunc,
	deleteDraft func(ctx context.Context, id uuid.UUID) (bool, error),
	videos VideoStore,
	policy submdomain.Policy,
	now nowFunc,
) PurgeDraftsCmd {
	return purgeDraftsHandler{
		listSubms:   listSubms,
		deleteDraft: deleteDraft,
		videos:      videos,
		policy:      policy,
		now:         now,
	}
}

type purgeDraftsHandler struct {
	listSubms   listSubmsFunc
	deleteDraft func(ctx context.Context, id uuid.UUID) (bool, error)
	videos      VideoStore
	policy      submdomain.Policy
	now         nowFunc
}

func (h purgeDraftsHandler) Handle(ctx context.Context, p PurgeDraftsParams) (PurgeDraftsResult, error) {
	maxAge := h.policy.DraftMaxAge
	if p.OlderThan > 0 {
		maxAge = p.OlderThan
	}
	cutoff := h.now().Add(-maxAge)

	draft := submdomain.StatusDraft
	drafts, err := h.listSubms(ctx, submdomain.SubmFilter{Status: &draft})
	if err != nil {
		return PurgeDraftsResult{}, fmt.Errorf("failed to list drafts: %w", err)
	}

	res := PurgeDraftsResult{Deleted: []uuid.UUID{}}
	for _, s := range drafts {
		if !s.CreatedAt.Before(cutoff) {
			continue
		}
		deleted, err := h.deleteDraft(ctx, s.UUID)
		if err != nil {
			return res, fmt.Errorf("failed to delete draft %s: %w", s.UUID, err)
		}
		if !deleted {
			// uploaded in the meantime
			continue
		}
		res.Deleted = append(res.Deleted, s.UUID)

		if h.videos == nil || s.Video.StoragePath == "" {
			continue
		}
		n, err := h.deleteObjects(ctx, path.Dir(s.Video.StoragePath)+"/")
		res.ObjectsDeleted += n
		if err != nil {
			logger.FromContext(ctx).Warn("failed to delete draft objects",
				slog.String("subm_uuid", s.UUID.String()),
				slog.Any("error", err))
		}
	}
	return res, nil
}

// deleteObjects removes every object under prefix, a few at a time.
func (h purgeDraftsHandler) deleteObjects(ctx context.Context, prefix string) (int, error) {
	keys, err := h.videos.ListFiles(ctx, prefix)
	if err != nil {
		return 0, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, key := range keys {
		g.Go(func() error {
			return h.videos.Delete(ctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(keys), nil
}
