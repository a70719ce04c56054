package submhttp

import (
	"context"
	"time"

	"github.com/coachhub/backend/subm/submsrvc"
	"github.com/coachhub/backend/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// minimum time between two submissions created by the same athlete
const createInterval = 10 * time.Second

type UserDirectory interface {
	GetUserByUUID(ctx context.Context, uuid uuid.UUID) (user.User, error)
}

type SubmHttpHandler struct {
	submSrvc *submsrvc.SubmSrvc
	users    UserDirectory

	// athlete uuid -> last submission creation time
	lastCreate *xsync.MapOf[uuid.UUID, time.Time]

	// display names attached to responses; sfGroup prevents nameCache stampedes
	nameCache *cache.Cache
	sfGroup   singleflight.Group

	now func() time.Time
}

func NewSubmHttpHandler(submSrvc *submsrvc.SubmSrvc, users UserDirectory) *SubmHttpHandler {
	return &SubmHttpHandler{
		submSrvc:   submSrvc,
		users:      users,
		lastCreate: xsync.NewMapOf[uuid.UUID, time.Time](),
		nameCache:  cache.New(5*time.Minute, 10*time.Minute),
		now:        time.Now,
	}
}

// RegisterRoutes expects the JWT middleware to be installed on r.
func (h *SubmHttpHandler) RegisterRoutes(r chi.Router) {
	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", h.PostSubm)
		r.Get("/", h.ListSubms)
		r.Route("/{submUuid}", func(r chi.Router) {
			r.Get("/", h.GetSubm)
			r.Patch("/", h.PatchSubm)
			r.Post("/upload", h.CompleteUpload)
			r.Post("/claim", h.ClaimSubm)
			r.Post("/in-review", h.MarkInReview)
			r.Put("/review", h.PutReview)
			r.Get("/review", h.GetReview)
			r.Post("/followup", h.RequestFollowup)
			r.Post("/reassign", h.ReassignSubm)
		})
	})
	r.Post("/reviews/{reviewUuid}/publish", h.PublishReview)
}
