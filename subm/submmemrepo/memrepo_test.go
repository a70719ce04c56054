package submmemrepo_test

import (
	"testing"

	"github.com/coachhub/backend/subm/submmemrepo"
	"github.com/coachhub/backend/subm/submrepotest"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

func TestMemSubmRepo(t *testing.T) {
	submrepotest.Run(t, func(t *testing.T) submrepotest.Fixture {
		return submrepotest.Fixture{
			Repo: submmemrepo.NewMemSubmRepo(),
			NewUser: func(t *testing.T, role auth.Role) uuid.UUID {
				return uuid.New()
			},
		}
	})
}
