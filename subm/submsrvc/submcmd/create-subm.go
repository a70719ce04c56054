package submcmd

import (
	"context"
	"fmt"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/coachhub/backend/validation"
	"github.com/google/uuid"
)

type CreateSubmCmd decorator.CmdHandler[CreateSubmParams, submdomain.Subm]

type CreateSubmParams struct {
	UUID      uuid.UUID
	Athlete   auth.Identity
	Content   submdomain.Content
	CoachUUID *uuid.UUID // intended coach, optional
}

func NewCreateSubmCmd(
	storeSubm func(ctx context.Context, s submdomain.Subm) error,
	getUserRole getUserRoleFunc,
	now nowFunc,
) CreateSubmCmd {
	return createSubmHandler{storeSubm: storeSubm, getUserRole: getUserRole, now: now}
}

type createSubmHandler struct {
	storeSubm   func(ctx context.Context, s submdomain.Subm) error
	getUserRole getUserRoleFunc
	now         nowFunc
}

func (h createSubmHandler) Handle(ctx context.Context, p CreateSubmParams) (submdomain.Subm, error) {
	if err := validation.Struct(p.Content); err != nil {
		return submdomain.Subm{}, err
	}
	if p.CoachUUID != nil {
		if err := requireCoach(ctx, h.getUserRole, *p.CoachUUID); err != nil {
			return submdomain.Subm{}, err
		}
	}
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}

	s, err := submdomain.NewSubm(p.UUID, p.Athlete, p.Content, p.CoachUUID, h.now())
	if err != nil {
		return submdomain.Subm{}, err
	}

	if err := h.storeSubm(ctx, s); err != nil {
		return submdomain.Subm{}, fmt.Errorf("failed to store submission: %w", err)
	}
	s.Version = 1
	return s, nil
}
