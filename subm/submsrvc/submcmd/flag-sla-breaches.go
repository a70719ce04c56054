package submcmd

import (
	"context"
	"fmt"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
)

type FlagSlaBreachesCmd decorator.CmdHandler[FlagSlaBreachesParams, FlagSlaBreachesResult]

type FlagSlaBreachesParams struct{}

type FlagSlaBreachesResult struct {
	Flagged []uuid.UUID
}

// NewFlagSlaBreachesCmd returns the report that marks submissions whose coach
// response deadline has passed. Breaches are only recorded; nothing is
// escalated or reassigned.
func NewFlagSlaBreachesCmd(listSubms listSubmsFunc, updateSubm updateSubmFunc, now nowFunc) FlagSlaBreachesCmd {
	return flagSlaBreachesHandler{listSubms: listSubms, updateSubm: updateSubm, now: now}
}

type flagSlaBreachesHandler struct {
	listSubms  listSubmsFunc
	updateSubm updateSubmFunc
	now        nowFunc
}

var pendingStatuses = []submdomain.Status{
	submdomain.StatusAwaitingCoach,
	submdomain.StatusClaimed,
	submdomain.StatusInReview,
	submdomain.StatusReopened,
}

func (h flagSlaBreachesHandler) Handle(ctx context.Context, p FlagSlaBreachesParams) (FlagSlaBreachesResult, error) {
	now := h.now()
	res := FlagSlaBreachesResult{Flagged: []uuid.UUID{}}
	for _, st := range pendingStatuses {
		subms, err := h.listSubms(ctx, submdomain.SubmFilter{Status: &st})
		if err != nil {
			return res, fmt.Errorf("failed to list %s submissions: %w", st, err)
		}
		for _, s := range subms {
			if s.SlaBreach || !s.IsSlaBreached(now) {
				continue
			}
			flagged := false
			_, err := h.updateSubm(ctx, s.UUID, func(s *submdomain.Subm) error {
				if !s.SlaBreach && s.IsSlaBreached(now) {
					s.SlaBreach = true
					flagged = true
				}
				return nil
			})
			if err != nil {
				return res, fmt.Errorf("failed to flag submission %s: %w", s.UUID, err)
			}
			if flagged {
				res.Flagged = append(res.Flagged, s.UUID)
			}
		}
	}
	return res, nil
}
