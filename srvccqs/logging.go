package decorator

import (
	"context"
	"log/slog"
	"time"

	"github.com/coachhub/backend/logger"
	"github.com/coachhub/backend/srvcerror"
)

type loggingHandler[P any, R any] struct {
	name string
	base interface {
		Handle(ctx context.Context, p P) (R, error)
	}
}

func (h loggingHandler[P, R]) Handle(ctx context.Context, p P) (R, error) {
	start := time.Now()
	res, err := h.base.Handle(ctx, p)
	log := logger.FromContext(ctx).With(
		slog.String("handler", h.name),
		slog.Duration("duration", time.Since(start)),
	)
	switch {
	case err == nil:
		log.Debug("handled")
	case srvcerror.Code(err) != "" && srvcerror.Code(err) != srvcerror.ErrCodeInternalServerError:
		log.Info("rejected", slog.String("code", srvcerror.Code(err)))
	default:
		log.Error("failed", slog.Any("error", err))
	}
	return res, err
}

// LogCmd wraps a command handler so every invocation is logged with its outcome.
func LogCmd[P any, R any](name string, h CmdHandler[P, R]) CmdHandler[P, R] {
	return loggingHandler[P, R]{name: name, base: h}
}

func LogQuery[Q any, R any](name string, h QueryHandler[Q, R]) QueryHandler[Q, R] {
	return loggingHandler[Q, R]{name: name, base: h}
}
