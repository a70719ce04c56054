package submdomain

import (
	"fmt"
	"net/http"

	"github.com/coachhub/backend/srvcerror"
)

const ErrCodeInvalidTransition = "invalid_transition"

func ErrInvalidTransition(from Status, ev Event) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTransition,
		fmt.Sprintf("cannot apply %s to a submission in status %s", ev, from),
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeClaimConflict = "conflict"

func ErrClaimConflict() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeClaimConflict,
		"submission has already been claimed by another coach",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeFollowupAlreadyRequested = "followup_already_requested"

func ErrFollowupAlreadyRequested() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeFollowupAlreadyRequested,
		"a follow-up has already been requested for this submission",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeFollowupWindowExpired = "followup_window_expired"

func ErrFollowupWindowExpired(days int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeFollowupWindowExpired,
		fmt.Sprintf("follow-ups can only be requested within %d days of the review", days),
	).SetHttpStatusCode(http.StatusUnprocessableEntity)
}

const ErrCodeReviewNotReady = "review_not_ready"

func ErrReviewNotReady() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeReviewNotReady,
		"the review for this submission has not been published yet",
	).SetHttpStatusCode(http.StatusUnprocessableEntity)
}

func ErrSubmNotFound() *srvcerror.Error {
	return srvcerror.ErrNotFound("submission not found")
}

func ErrReviewNotFound() *srvcerror.Error {
	return srvcerror.ErrNotFound("review not found")
}

func errNotOwner() *srvcerror.Error {
	return srvcerror.ErrForbidden("only the athlete who created the submission may do this")
}

func errNotClaimant() *srvcerror.Error {
	return srvcerror.ErrForbidden("only the coach who claimed the submission may do this")
}

func errNotParticipant() *srvcerror.Error {
	return srvcerror.ErrForbidden("only the owning athlete or the claiming coach may edit this submission")
}

func errReviewLocked(st Status) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTransition,
		fmt.Sprintf("the review cannot be edited while the submission is %s", st),
	).SetHttpStatusCode(http.StatusConflict)
}

func errNotReassignable(st Status) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTransition,
		fmt.Sprintf("a submission in status %s cannot be reassigned", st),
	).SetHttpStatusCode(http.StatusConflict)
}
