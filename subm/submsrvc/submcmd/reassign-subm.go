package submcmd

import (
	"context"

	"github.com/coachhub/backend/notify"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type ReassignSubmCmd decorator.CmdHandler[ReassignSubmParams, submdomain.Subm]

type ReassignSubmParams struct {
	SubmUUID  uuid.UUID
	Admin     auth.Identity
	CoachUUID uuid.UUID
}

func NewReassignSubmCmd(
	getUserRole getUserRoleFunc,
	updateSubm updateSubmFunc,
	notifyUser notifyFunc,
	now nowFunc,
) ReassignSubmCmd {
	return reassignSubmHandler{
		getUserRole: getUserRole,
		updateSubm:  updateSubm,
		notifyUser:  notifyUser,
		now:         now,
	}
}

type reassignSubmHandler struct {
	getUserRole getUserRoleFunc
	updateSubm  updateSubmFunc
	notifyUser  notifyFunc
	now         nowFunc
}

func (h reassignSubmHandler) Handle(ctx context.Context, p ReassignSubmParams) (submdomain.Subm, error) {
	if err := p.Admin.Require(auth.RoleAdmin); err != nil {
		return submdomain.Subm{}, err
	}
	if err := requireCoach(ctx, h.getUserRole, p.CoachUUID); err != nil {
		return submdomain.Subm{}, err
	}

	s, err := h.updateSubm(ctx, p.SubmUUID, func(s *submdomain.Subm) error {
		return s.Reassign(p.Admin, p.CoachUUID, h.now())
	})
	if err != nil {
		return submdomain.Subm{}, err
	}

	h.notifyUser(ctx, notify.KindSubmReassigned, p.CoachUUID, submPayload(s))
	return s, nil
}
