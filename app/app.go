// Package app assembles services from configuration for the server and admin binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/coachhub/backend/conf"
	"github.com/coachhub/backend/notify"
	"github.com/coachhub/backend/s3bucket"
	"github.com/coachhub/backend/subm/submddbrepo"
	"github.com/coachhub/backend/subm/submmemrepo"
	"github.com/coachhub/backend/subm/submpgrepo"
	"github.com/coachhub/backend/subm/submsrvc"
	"github.com/coachhub/backend/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Conf       conf.Config
	UserSrvc   *user.UserSrvc
	SubmSrvc   *submsrvc.SubmSrvc
	Dispatcher *notify.Dispatcher

	// PgUrl is empty unless a Postgres database is in use.
	PgUrl string

	closers []func()
}

// Close waits for pending notifications and releases connections.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func Build(ctx context.Context, c conf.Config, log *slog.Logger) (*App, error) {
	a := &App{Conf: c}

	var userRepo user.UserRepo
	var submRepo submsrvc.SubmRepo

	var pool *pgxpool.Pool
	if c.Store.Backend != conf.StoreMemory {
		// users live in Postgres for both persistent store backends
		pgUrl, err := conf.GetPgConnStrFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		pool, err = pgxpool.New(ctx, pgUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.PgUrl = pgUrl
		userRepo = user.NewPgUserRepo(pool)
	}

	switch c.Store.Backend {
	case conf.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		userRepo = user.NewInMemUserRepo()
		submRepo = submmemrepo.NewMemSubmRepo()
	case conf.StorePostgres:
		submRepo = submpgrepo.NewPgSubmRepo(pool)
	case conf.StoreDynamoDb:
		client, err := newDynamoDbClient(ctx, c.Store)
		if err != nil {
			a.Close()
			return nil, err
		}
		submRepo = submddbrepo.NewDynamoDbSubmRepo(client, c.Store.TablePrefix)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	a.UserSrvc = user.NewUserSrvc(userRepo, []byte(c.Http.JwtKey))

	sender, err := newSender(ctx, c, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatcher = notify.NewDispatcher(sender, a.UserSrvc, c.InboxAddress(), log)

	srvcConf := submsrvc.Config{
		Policy:     c.SubmPolicy(),
		PresignTTL: c.PresignTTL(),
	}
	if c.S3.Bucket != "" {
		bucket, err := s3bucket.NewS3Bucket(ctx, c.S3.Region, c.S3.Bucket)
		if err != nil {
			a.Close()
			return nil, err
		}
		srvcConf.Videos = bucket
	} else {
		log.Warn("no video bucket configured, uploads are not verified")
	}
	a.SubmSrvc = submsrvc.NewSubmSrvc(submRepo, a.UserSrvc, a.Dispatcher, srvcConf)

	return a, nil
}

// CreateDynamoDbTables creates the submission tables when the DynamoDB store is configured.
func CreateDynamoDbTables(ctx context.Context, c conf.Config) error {
	if c.Store.Backend != conf.StoreDynamoDb {
		return errors.New("store backend is not dynamodb")
	}
	client, err := newDynamoDbClient(ctx, c.Store)
	if err != nil {
		return err
	}
	return submddbrepo.NewDynamoDbSubmRepo(client, c.Store.TablePrefix).CreateTables(ctx)
}

func newDynamoDbClient(ctx context.Context, sc conf.StoreConfig) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(sc.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
	}), nil
}

func newSender(ctx context.Context, c conf.Config, log *slog.Logger) (notify.Sender, error) {
	nc := c.Notify
	switch nc.Backend {
	case conf.NotifyLog:
		return notify.LogSender{Log: log}, nil
	case conf.NotifySmtp:
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:          nc.SmtpHost,
			Port:          nc.SmtpPort,
			User:          nc.SmtpUser,
			Password:      nc.SmtpPassword,
			SkipTLSVerify: nc.SmtpSkipTLSVerify,
		}, c.FromAddress()), nil
	case conf.NotifySendGrid:
		return notify.NewSendGridSender(nc.SendGridApiKey, c.FromAddress()), nil
	case conf.NotifySqs:
		region := nc.SqsRegion
		if region == "" {
			region = c.Store.Region
		}
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		return notify.NewSQSSender(sqs.NewFromConfig(cfg), nc.SqsQueueUrl), nil
	}
	return nil, fmt.Errorf("unknown notify backend %q", nc.Backend)
}
