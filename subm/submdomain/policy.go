package submdomain

import "time"

// Policy holds the time windows of the review lifecycle.
// Deadlines derived from it are recorded on submissions; nothing enforces them
// beyond FlagSlaBreaches marking breached submissions.
type Policy struct {
	SlaWindow              time.Duration // coach response target after upload
	FollowupWindow         time.Duration // how long after publication a follow-up may be requested
	FollowupResponseWindow time.Duration // coach response target after a follow-up
	DraftMaxAge            time.Duration // drafts older than this are purged
}

func DefaultPolicy() Policy {
	return Policy{
		SlaWindow:              48 * time.Hour,
		FollowupWindow:         7 * 24 * time.Hour,
		FollowupResponseWindow: 48 * time.Hour,
		DraftMaxAge:            72 * time.Hour,
	}
}
