package submcmd

import (
	"context"

	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/coachhub/backend/validation"
	"github.com/google/uuid"
)

type PatchSubmCmd decorator.CmdHandler[PatchSubmParams, submdomain.Subm]

type PatchSubmParams struct {
	SubmUUID uuid.UUID
	Caller   auth.Identity
	Patch    submdomain.Patch
}

func NewPatchSubmCmd(updateSubm updateSubmFunc, now nowFunc) PatchSubmCmd {
	return patchSubmHandler{updateSubm: updateSubm, now: now}
}

type patchSubmHandler struct {
	updateSubm updateSubmFunc
	now        nowFunc
}

func (h patchSubmHandler) Handle(ctx context.Context, p PatchSubmParams) (submdomain.Subm, error) {
	if p.Patch.IsEmpty() {
		return submdomain.Subm{}, srvcerror.ErrInvalidRequest("no fields to update")
	}
	if err := validation.Struct(p.Patch); err != nil {
		return submdomain.Subm{}, err
	}
	if p.Patch.Title != nil && *p.Patch.Title == "" {
		return submdomain.Subm{}, srvcerror.ErrInvalidRequest("title must not be empty")
	}
	return h.updateSubm(ctx, p.SubmUUID, func(s *submdomain.Subm) error {
		return s.ApplyPatch(p.Caller, p.Patch, h.now())
	})
}
