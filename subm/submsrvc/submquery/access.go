package submquery

import (
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
)

// canViewSubm: athletes see their own submissions, coaches see the queue and
// what they hold, admins see everything.
func canViewSubm(caller auth.Identity, s submdomain.Subm) bool {
	switch caller.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleAthlete:
		return s.IsOwnedBy(caller)
	case auth.RoleCoach:
		if s.IsClaimedBy(caller) {
			return true
		}
		if s.ClaimedBy != nil {
			return false
		}
		return s.CoachUUID == nil || *s.CoachUUID == caller.UserUUID || s.Status == submdomain.StatusAwaitingCoach
	}
	return false
}

// canViewReview: drafts are visible to the authoring coach only; athletes see published reviews.
func canViewReview(caller auth.Identity, s submdomain.Subm, r submdomain.Review) bool {
	switch caller.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleCoach:
		return s.IsClaimedBy(caller) || r.CoachUUID == caller.UserUUID
	case auth.RoleAthlete:
		return s.IsOwnedBy(caller) && r.Status == submdomain.ReviewStatusPublished
	}
	return false
}

func errSubmHidden() error {
	return srvcerror.ErrForbidden("you may not view this submission")
}

func errReviewHidden() error {
	return srvcerror.ErrForbidden("you may not view this review")
}
