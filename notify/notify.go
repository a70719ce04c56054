// Package notify sends one-shot notification emails about submission events.
// Delivery is fire-and-forget: failures are logged, never returned to the caller.
package notify

import (
	"context"
	"log/slog"
	"net/mail"
	"sync"
	"time"

	"github.com/coachhub/backend/user"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Kind string

const (
	KindSubmissionReceived Kind = "submission_received"
	KindReviewPublished    Kind = "review_published"
	KindFollowupRequested  Kind = "followup_requested"
	KindSubmReassigned     Kind = "subm_reassigned"
)

// Payload carries what the templates need to describe the event.
type Payload struct {
	SubmUUID   uuid.UUID
	Title      string
	ReviewUUID *uuid.UUID
	Deadline   *time.Time
}

// Message is a rendered notification ready for a Sender.
type Message struct {
	Kind    Kind         `json:"kind"`
	To      mail.Address `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
	HTML    string       `json:"html"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type UserDirectory interface {
	GetUserByUUID(ctx context.Context, userUuid uuid.UUID) (user.User, error)
}

type Dispatcher struct {
	sender  Sender
	users   UserDirectory
	inbox   *mail.Address
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns a dispatcher delivering through sender. inbox, when set,
// receives notifications that have no specific recipient yet.
func NewDispatcher(sender Sender, users UserDirectory, inbox *mail.Address, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		users:   users,
		inbox:   inbox,
		timeout: 30 * time.Second,
		log:     log,
	}
}

// Notify sends a notification of kind to the user identified by recipient.
func (d *Dispatcher) Notify(ctx context.Context, kind Kind, recipient uuid.UUID, p Payload) {
	log := d.log.With(
		slog.String("kind", string(kind)),
		slog.String("recipient", recipient.String()),
		slog.String("subm_uuid", p.SubmUUID.String()),
	)
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		log = log.With(slog.String("request_id", reqID))
	}
	d.dispatch(log, kind, p, func(ctx context.Context) (mail.Address, error) {
		u, err := d.users.GetUserByUUID(ctx, recipient)
		if err != nil {
			return mail.Address{}, err
		}
		return mail.Address{Name: u.DisplayName(), Address: u.Email}, nil
	})
}

// NotifyInbox sends a notification to the shared coach inbox, if one is configured.
func (d *Dispatcher) NotifyInbox(ctx context.Context, kind Kind, p Payload) {
	if d.inbox == nil {
		d.log.Debug("no inbox configured, notification dropped", slog.String("kind", string(kind)))
		return
	}
	inbox := *d.inbox
	log := d.log.With(
		slog.String("kind", string(kind)),
		slog.String("recipient", inbox.Address),
		slog.String("subm_uuid", p.SubmUUID.String()),
	)
	d.dispatch(log, kind, p, func(context.Context) (mail.Address, error) {
		return inbox, nil
	})
}

func (d *Dispatcher) dispatch(log *slog.Logger, kind Kind, p Payload, resolve func(context.Context) (mail.Address, error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// detached from the request so a finished response does not cancel delivery
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		to, err := resolve(ctx)
		if err != nil {
			log.Error("failed to resolve notification recipient", slog.Any("error", err))
			return
		}
		msg, err := Render(kind, to, p)
		if err != nil {
			log.Error("failed to render notification", slog.Any("error", err))
			return
		}
		if err := d.sender.Send(ctx, msg); err != nil {
			log.Error("failed to send notification", slog.Any("error", err))
			return
		}
		log.Info("notification sent")
	}()
}

// Wait blocks until every dispatched notification has been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
