// Package notify decides who hears about an activity and fans the
// notifications out, one row per recipient, without ever failing the
// request that triggered them.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tracker/internal/model"
)

var (
	ErrInvalidNotice    = errors.New("invalid notification")
	ErrUnknownRecipient = errors.New("recipient does not exist")
)

// Store persists notification rows.
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Users resolves recipient identities.
type Users interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Publisher pushes a freshly stored notification to live listeners.
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification) error
}

// Result is the outcome of delivering one Notice.
type Result struct {
	Recipient    uuid.UUID
	Notification *model.Notification
	Err          error
}

type Dispatcher struct {
	store   Store
	users   Users
	pub     Publisher
	log     *log.Logger
	workers int
}

type Option func(*Dispatcher)

func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) { d.pub = p }
}

// WithWorkers bounds how many recipient writes run at once.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func NewDispatcher(store Store, users Users, logger *log.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: store, users: users, log: logger, workers: 4}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify stores a single unread notification for recipient.
func (d *Dispatcher) Notify(ctx context.Context, recipient uuid.UUID, title, content string, typ model.NotificationType, related model.RelatedRef) (*model.Notification, error) {
	if recipient == uuid.Nil || strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" || !typ.Valid() {
		return nil, ErrInvalidNotice
	}

	ok, err := d.users.Exists(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownRecipient
	}

	n := &model.Notification{
		UserID:  recipient,
		Title:   title,
		Content: content,
		Type:    typ,
		Read:    false,
	}
	n.SetRelated(related)

	if err := d.store.Create(ctx, n); err != nil {
		return nil, err
	}

	if d.pub != nil {
		if err := d.pub.Publish(ctx, n); err != nil {
			d.log.WithError(err).WithField("notification_id", n.ID).Warn("live push failed")
		}
	}
	return n, nil
}

// Dispatch delivers every notice independently. Failures are logged and
// reported in the matching Result; they never stop the other deliveries and
// are never returned as an error. The request context's cancellation is
// ignored so a disconnecting client does not drop notifications half way.
func (d *Dispatcher) Dispatch(ctx context.Context, notices []Notice) []Result {
	results := make([]Result, len(notices))
	if len(notices) == 0 {
		return results
	}
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, notice := range notices {
		g.Go(func() error {
			n, err := d.Notify(ctx, notice.Recipient, notice.Title, notice.Content, notice.Type, notice.Related)
			results[i] = Result{Recipient: notice.Recipient, Notification: n, Err: err}
			if err != nil {
				d.log.WithError(err).WithFields(log.Fields{
					"recipient": notice.Recipient,
					"type":      notice.Type,
				}).Error("notification dispatch failed")
				return nil
			}
			d.log.WithFields(log.Fields{
				"recipient":       notice.Recipient,
				"type":            notice.Type,
				"notification_id": n.ID,
			}).Debug("notification created")
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Delivered counts the successful results.
func Delivered(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
