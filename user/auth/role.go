package auth

import (
	"fmt"
	"slices"

	"github.com/coachhub/backend/srvcerror"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
	RoleAdmin   Role = "admin"
)

var allRoles = []Role{RoleAthlete, RoleCoach, RoleAdmin}

// ParseRole accepts only the canonical role names. Legacy aliases
// are rewritten in storage by the admin migrate-roles command.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !slices.Contains(allRoles, r) {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// LegacyRoleAliases maps role strings found in older user records to the canonical role.
var LegacyRoleAliases = map[string]Role{
	"creator":    RoleCoach,
	"superadmin": RoleAdmin,
	"client":     RoleAthlete,
}

// Identity is the resolved caller of an operation.
type Identity struct {
	UserUUID uuid.UUID
	Email    string
	Role     Role
}

func (i Identity) Is(r Role) bool {
	return i.Role == r
}

// Require fails with a forbidden error unless the identity holds one of roles.
func (i Identity) Require(roles ...Role) error {
	if slices.Contains(roles, i.Role) {
		return nil
	}
	return srvcerror.ErrForbidden(fmt.Sprintf("role %q may not perform this action", i.Role))
}
