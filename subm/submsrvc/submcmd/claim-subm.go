package submcmd

import (
	"context"
	"time"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type ClaimSubmCmd decorator.CmdHandler[ClaimSubmParams, submdomain.Subm]

type ClaimSubmParams struct {
	SubmUUID uuid.UUID
	Coach    auth.Identity
}

func NewClaimSubmCmd(
	getSubm getSubmFunc,
	claimSubm func(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error),
	now nowFunc,
) ClaimSubmCmd {
	return claimSubmHandler{getSubm: getSubm, claimSubm: claimSubm, now: now}
}

type claimSubmHandler struct {
	getSubm getSubmFunc
	// single conditional write; reports whether this call won the claim
	claimSubm func(ctx context.Context, id uuid.UUID, coachUUID uuid.UUID, at time.Time) (submdomain.Subm, bool, error)
	now       nowFunc
}

func (h claimSubmHandler) Handle(ctx context.Context, p ClaimSubmParams) (submdomain.Subm, error) {
	s, err := h.getSubm(ctx, p.SubmUUID)
	if err != nil {
		return submdomain.Subm{}, err
	}
	held, err := s.CheckClaim(p.Coach)
	if err != nil {
		return submdomain.Subm{}, err
	}
	if held {
		return s, nil
	}

	cur, won, err := h.claimSubm(ctx, p.SubmUUID, p.Coach.UserUUID, h.now())
	if err != nil {
		return submdomain.Subm{}, err
	}
	if won {
		return cur, nil
	}

	// the conditional write failed: classify against what is stored now
	if _, err := cur.CheckClaim(p.Coach); err != nil {
		return submdomain.Subm{}, err
	}
	return cur, nil
}
