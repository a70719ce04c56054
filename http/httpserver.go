package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coachhub/backend/httpjson"
	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/user/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

// RouteRegistrar is implemented by the per-domain http handlers.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type Options struct {
	AllowedOrigins []string
	JwtKey         []byte
	// Env and Version tag every access log line.
	Env     string
	Version string
}

type HttpServer struct {
	router *chi.Mux
	srv    *http.Server
}

func NewHttpServer(opts Options, log *slog.Logger, handlers ...RouteRegistrar) *HttpServer {
	router := chi.NewRouter()

	accessLog := httplog.NewLogger("coachhub", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": opts.Version,
			"env":     opts.Env,
		},
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(accessLog))
	router.Use(logger.Middleware(log))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(opts.JwtKey))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteSuccessJson(w, "ok")
	})
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return &HttpServer{
		router: router,
		srv: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *HttpServer) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *HttpServer) Start(address string) error {
	s.srv.Addr = address
	return s.srv.ListenAndServe()
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
