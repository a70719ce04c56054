package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coachhub/backend/app"
	"github.com/coachhub/backend/conf"
	apihttp "github.com/coachhub/backend/http"
	"github.com/coachhub/backend/subm/submhttp"
	userhttp "github.com/coachhub/backend/user/http"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	c, err := conf.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if c.Http.JwtKey == "" {
		log.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, c, log)
	if err != nil {
		log.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	httpServer := apihttp.NewHttpServer(apihttp.Options{
		AllowedOrigins: c.Http.AllowedOrigins,
		JwtKey:         []byte(c.Http.JwtKey),
		Env:            os.Getenv("ENV"),
		Version:        version,
	}, log,
		userhttp.NewUserHttpHandler(a.UserSrvc),
		submhttp.NewSubmHttpHandler(a.SubmSrvc, a.UserSrvc),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down http server", "error", err)
		}
	}()

	log.Info("starting server", "address", c.Http.Addr, "store", c.Store.Backend, "notify", c.Notify.Backend)
	err = httpServer.Start(c.Http.Addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
