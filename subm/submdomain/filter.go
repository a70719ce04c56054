package submdomain

import "github.com/google/uuid"

// SubmFilter narrows a submission listing. Nil fields are not filtered on.
type SubmFilter struct {
	Status      *Status
	AthleteUUID *uuid.UUID
	ClaimedBy   *uuid.UUID
	Limit       int
}

func (f SubmFilter) Matches(s Subm) bool {
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.AthleteUUID != nil && s.AthleteUUID != *f.AthleteUUID {
		return false
	}
	if f.ClaimedBy != nil && (s.ClaimedBy == nil || *s.ClaimedBy != *f.ClaimedBy) {
		return false
	}
	return true
}
