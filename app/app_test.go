package app_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/coachhub/backend/app"
	"github.com/coachhub/backend/conf"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user"
	"github.com/coachhub/backend/user/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInMemory(t *testing.T) {
	c := conf.Default()
	c.Store.Backend = conf.StoreMemory
	c.Http.JwtKey = "test"

	a, err := app.Build(context.Background(), c, slog.Default())
	require.NoError(t, err)
	defer a.Close()
	assert.Empty(t, a.PgUrl)

	ctx := context.Background()
	u, err := a.UserSrvc.CreateUser(ctx, user.CreateUserParams{
		Username: "athlete1",
		Email:    "athlete1@example.com",
		Password: "password123",
		Role:     auth.RoleAthlete,
	})
	require.NoError(t, err)

	s, err := a.SubmSrvc.CreateSubm.Handle(ctx, submcmd.CreateSubmParams{
		Athlete: auth.Identity{UserUUID: u.UUID, Role: auth.RoleAthlete},
		Content: submdomain.Content{Title: "Jump shot"},
	})
	require.NoError(t, err)
	assert.Equal(t, submdomain.StatusDraft, s.Status)
}

func TestCreateDynamoDbTablesNeedsDynamoBackend(t *testing.T) {
	c := conf.Default()
	c.Store.Backend = conf.StoreMemory
	assert.Error(t, app.CreateDynamoDbTables(context.Background(), c))
}
