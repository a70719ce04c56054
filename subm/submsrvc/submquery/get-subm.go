package submquery

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type GetSubmQuery decorator.QueryHandler[GetSubmParams, submdomain.Subm]

func NewGetSubmQuery(getSubm func(ctx context.Context, submUuid uuid.UUID) (submdomain.Subm, error)) GetSubmQuery {
	return getSubmHandler{getSubm: getSubm}
}

type GetSubmParams struct {
	SubmUUID uuid.UUID
	Caller   auth.Identity
}

type getSubmHandler struct {
	getSubm func(ctx context.Context, submUuid uuid.UUID) (submdomain.Subm, error)
}

func (h getSubmHandler) Handle(ctx context.Context, p GetSubmParams) (submdomain.Subm, error) {
	s, err := h.getSubm(ctx, p.SubmUUID)
	if err != nil {
		return submdomain.Subm{}, err
	}
	if !canViewSubm(p.Caller, s) {
		return submdomain.Subm{}, errSubmHidden()
	}
	return s, nil
}
