package submdomain

import "fmt"

type Status string

const (
	StatusDraft         Status = "draft"
	StatusAwaitingCoach Status = "awaiting_coach"
	StatusClaimed       Status = "claimed"
	StatusInReview      Status = "in_review"
	StatusComplete      Status = "complete"
	StatusReopened      Status = "reopened"
)

var allStatuses = []Status{
	StatusDraft,
	StatusAwaitingCoach,
	StatusClaimed,
	StatusInReview,
	StatusComplete,
	StatusReopened,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown submission status %q", s)
}

// Event is something that happens to a submission and may move its status.
type Event string

const (
	EventUploadCompleted   Event = "upload_completed"
	EventClaimed           Event = "claimed"
	EventReviewStarted     Event = "review_started"
	EventReviewPublished   Event = "review_published"
	EventFollowupRequested Event = "followup_requested"
)

// transitions is the only place legal status moves are defined.
// Creation (-> draft) is not an event; see NewSubm.
var transitions = map[Status]map[Event]Status{
	StatusDraft: {
		EventUploadCompleted: StatusAwaitingCoach,
	},
	StatusAwaitingCoach: {
		EventClaimed: StatusClaimed,
	},
	StatusClaimed: {
		EventReviewStarted: StatusInReview,
	},
	StatusInReview: {
		EventReviewPublished: StatusComplete,
	},
	StatusComplete: {
		EventFollowupRequested: StatusReopened,
	},
	StatusReopened: {
		EventReviewPublished: StatusComplete,
	},
}

// Transition returns the status reached from `from` on event ev,
// or an invalid_transition error when the table has no such edge.
func Transition(from Status, ev Event) (Status, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return "", ErrInvalidTransition(from, ev)
	}
	return to, nil
}

// CanTransition reports whether ev is legal in status from.
func CanTransition(from Status, ev Event) bool {
	_, ok := transitions[from][ev]
	return ok
}
