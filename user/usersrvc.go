package user

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type UserSrvc struct {
	repo   UserRepo
	jwtKey []byte
}

func NewUserSrvc(repo UserRepo, jwtKey []byte) *UserSrvc {
	return &UserSrvc{repo: repo, jwtKey: jwtKey}
}

func (s *UserSrvc) GetUserByUUID(ctx context.Context, userUuid uuid.UUID) (User, error) {
	row, err := s.repo.GetUserByUUID(ctx, userUuid)
	if err != nil {
		if errors.Is(err, errNoUser) {
			return User{}, newErrUserNotFound()
		}
		return User{}, newErrInternalSE().SetDebug(fmt.Errorf("failed to get user: %w", err))
	}
	u, err := row.toUser()
	if err != nil {
		return User{}, newErrInternalSE().SetDebug(fmt.Errorf("user %s: %w", userUuid, err))
	}
	return u, nil
}

// Resolve turns a bearer credential into the caller's identity.
// It never retries; verification is cheap and idempotent for the caller to repeat.
func (s *UserSrvc) Resolve(ctx context.Context, bearerToken string) (auth.Identity, error) {
	if bearerToken == "" {
		return auth.Identity{}, srvcerror.ErrUnauthenticated()
	}
	claims, err := auth.ValidateJWT(bearerToken, s.jwtKey)
	if err != nil {
		return auth.Identity{}, srvcerror.ErrUnauthenticated().SetDebug(err)
	}
	return auth.IdentityFromClaims(claims)
}

func (s *UserSrvc) IssueToken(u User) (string, error) {
	token, err := auth.GenerateJWT(u.Username, u.Email, u.UUID, u.Role, s.jwtKey)
	if err != nil {
		return "", newErrInternalSE().SetDebug(fmt.Errorf("failed to generate JWT: %w", err))
	}
	return token, nil
}

// MigrateLegacyRoles rewrites every legacy role alias in storage to its canonical role.
// It returns the number of rewritten rows per alias.
func (s *UserSrvc) MigrateLegacyRoles(ctx context.Context) (map[string]int64, error) {
	log := logger.FromContext(ctx)

	aliases := make([]string, 0, len(auth.LegacyRoleAliases))
	for alias := range auth.LegacyRoleAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	res := make(map[string]int64, len(aliases))
	for _, alias := range aliases {
		to := auth.LegacyRoleAliases[alias]
		n, err := s.repo.RewriteRole(ctx, alias, string(to))
		if err != nil {
			return res, fmt.Errorf("failed to migrate role %q: %w", alias, err)
		}
		log.Info("migrated legacy role", "from", alias, "to", to, "rows", n)
		res[alias] = n
	}
	return res, nil
}
