package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/coachhub/backend/app"
	"github.com/coachhub/backend/conf"
	"github.com/coachhub/backend/migrate"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/user"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string
	var logFile string
	var srvcLog *slog.Logger
	var cfg conf.Config

	var rootCmd = &cobra.Command{
		Use:   "coachhub-admin",
		Short: "Admin CLI tool for CoachHub",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			srvcLog, err = InitializeLogger(logLevel, logFile != "", logFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env file: %w", err)
			}
			cfg, err = conf.Load()
			return err
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	// withApp runs fn against services built from the loaded configuration.
	withApp := func(fn func(ctx context.Context, a *app.App) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Build(ctx, cfg, srvcLog)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, a)
		}
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgUrl, err := conf.GetPgConnStrFromEnv(cmd.Context())
			if err != nil {
				return err
			}
			version, err := migrate.Up(pgUrl)
			if err != nil {
				return err
			}
			log.Info().Uint("version", version).Msg("schema is up to date")
			return nil
		},
	}

	var createTablesCmd = &cobra.Command{
		Use:   "create-tables",
		Short: "Create the DynamoDB submission and review tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.CreateDynamoDbTables(cmd.Context(), cfg); err != nil {
				return err
			}
			log.Info().Str("prefix", cfg.Store.TablePrefix).Msg("tables created")
			return nil
		},
	}

	var username, email, password string
	var createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: withApp(func(ctx context.Context, a *app.App) error {
			u, err := a.UserSrvc.CreateAdmin(ctx, user.CreateUserParams{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			log.Info().Str("uuid", u.UUID.String()).Str("username", u.Username).Msg("admin created")
			return nil
		}),
	}
	createAdminCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	createAdminCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	createAdminCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")

	var migrateRolesCmd = &cobra.Command{
		Use:   "migrate-roles",
		Short: "Rewrite legacy role names stored on user accounts",
		RunE: withApp(func(ctx context.Context, a *app.App) error {
			counts, err := a.UserSrvc.MigrateLegacyRoles(ctx)
			if err != nil {
				return err
			}
			for legacy, n := range counts {
				log.Info().Str("legacy_role", legacy).Int64("users", n).Msg("roles rewritten")
			}
			return nil
		}),
	}

	var olderThan time.Duration
	var purgeDraftsCmd = &cobra.Command{
		Use:   "purge-drafts",
		Short: "Delete abandoned draft submissions and their uploaded objects",
		RunE: withApp(func(ctx context.Context, a *app.App) error {
			res, err := a.SubmSrvc.PurgeDrafts.Handle(ctx, submcmd.PurgeDraftsParams{OlderThan: olderThan})
			if err != nil {
				return err
			}
			log.Info().Int("drafts", len(res.Deleted)).Int("objects", res.ObjectsDeleted).Msg("drafts purged")
			return nil
		}),
	}
	purgeDraftsCmd.Flags().DurationVar(&olderThan, "older-than", 0, "Override the configured draft max age, e.g. 96h")

	var flagSlaCmd = &cobra.Command{
		Use:   "flag-sla-breaches",
		Short: "Mark submissions whose response deadline has passed",
		RunE: withApp(func(ctx context.Context, a *app.App) error {
			res, err := a.SubmSrvc.FlagSlaBreaches.Handle(ctx, submcmd.FlagSlaBreachesParams{})
			if err != nil {
				return err
			}
			for _, id := range res.Flagged {
				log.Warn().Str("subm_uuid", id.String()).Msg("sla breached")
			}
			log.Info().Int("flagged", len(res.Flagged)).Msg("sla check done")
			return nil
		}),
	}

	rootCmd.AddCommand(migrateCmd, createTablesCmd, createAdminCmd, migrateRolesCmd, purgeDraftsCmd, flagSlaCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
