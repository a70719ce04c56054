package submhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidUUID(name)
	}
	return id, nil
}

// reserveCreate records an athlete's submission attempt and reports whether
// createInterval has passed since the previous one. The returned release
// func undoes the reservation when the create fails.
func (h *SubmHttpHandler) reserveCreate(athlete uuid.UUID) (ok bool, release func()) {
	now := h.now()
	var prev time.Time
	var hadPrev bool
	h.lastCreate.Compute(athlete, func(last time.Time, loaded bool) (time.Time, bool) {
		if loaded && now.Sub(last) < createInterval {
			return last, false
		}
		ok = true
		prev, hadPrev = last, loaded
		return now, false
	})
	if !ok {
		return false, func() {}
	}
	release = func() {
		h.lastCreate.Compute(athlete, func(last time.Time, loaded bool) (time.Time, bool) {
			if !loaded || !last.Equal(now) {
				// a later attempt owns the slot
				return last, !loaded
			}
			return prev, !hadPrev
		})
	}
	return true, release
}
