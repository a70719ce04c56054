package submcmd

import (
	"context"
	"fmt"
	"time"

	"github.com/coachhub/backend/notify"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

// VideoStore is the object storage holding uploaded videos.
type VideoStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type (
	getSubmFunc     func(ctx context.Context, id uuid.UUID) (submdomain.Subm, error)
	updateSubmFunc  func(ctx context.Context, id uuid.UUID, fn func(*submdomain.Subm) error) (submdomain.Subm, error)
	listSubmsFunc   func(ctx context.Context, f submdomain.SubmFilter) ([]submdomain.Subm, error)
	notifyFunc      func(ctx context.Context, kind notify.Kind, recipient uuid.UUID, p notify.Payload)
	nowFunc         func() time.Time
	getUserRoleFunc func(ctx context.Context, userUuid uuid.UUID) (auth.Role, error)
)

// requireCoach rejects ids that do not belong to an existing coach account.
func requireCoach(ctx context.Context, getUserRole getUserRoleFunc, coachUuid uuid.UUID) error {
	role, err := getUserRole(ctx, coachUuid)
	if err != nil {
		if srvcerror.HasCode(err, srvcerror.ErrCodeNotFound) {
			return srvcerror.ErrInvalidRequest("coach not found")
		}
		return fmt.Errorf("failed to look up coach: %w", err)
	}
	if role != auth.RoleCoach {
		return srvcerror.ErrInvalidRequest("submissions can only be assigned to coaches")
	}
	return nil
}

func submPayload(s submdomain.Subm) notify.Payload {
	return notify.Payload{
		SubmUUID:   s.UUID,
		Title:      s.Title,
		ReviewUUID: s.ReviewUUID,
		Deadline:   s.FollowupDeadline,
	}
}
