package submquery

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
)

type ListSubmsQuery decorator.QueryHandler[ListSubmsParams, []submdomain.Subm]

type ListSubmsParams struct {
	Caller auth.Identity
	Status *submdomain.Status
	// Mine restricts a coach's listing to submissions they have claimed.
	// Athletes always see only their own.
	Mine  bool
	Limit int
}

const maxListLimit = 100

func NewListSubmsQuery(listSubms func(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error)) ListSubmsQuery {
	return listSubmsHandler{listSubms: listSubms}
}

type listSubmsHandler struct {
	listSubms func(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error)
}

func (h listSubmsHandler) Handle(ctx context.Context, p ListSubmsParams) ([]submdomain.Subm, error) {
	f := submdomain.SubmFilter{Status: p.Status, Limit: p.Limit}
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}

	switch p.Caller.Role {
	case auth.RoleAthlete:
		f.AthleteUUID = &p.Caller.UserUUID
	case auth.RoleCoach:
		if p.Mine {
			f.ClaimedBy = &p.Caller.UserUUID
		} else if f.Status == nil {
			queue := submdomain.StatusAwaitingCoach
			f.Status = &queue
		}
	case auth.RoleAdmin:
	default:
		return nil, p.Caller.Require(auth.RoleAthlete, auth.RoleCoach, auth.RoleAdmin)
	}

	subms, err := h.listSubms(ctx, f)
	if err != nil {
		return nil, err
	}
	res := make([]submdomain.Subm, 0, len(subms))
	for _, s := range subms {
		if canViewSubm(p.Caller, s) {
			res = append(res, s)
		}
	}
	return res, nil
}
