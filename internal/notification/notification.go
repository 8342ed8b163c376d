// Package notification keeps the per-user notification centre. Staff post
// notices directly, and order events become notices for the user who placed
// the order.
package notification

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/model"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/repository"
)

// Notice types raised from order events.
const (
	TypeOrderReady = "order_ready"
	TypeAnnounce   = "announcement"
)

// Config holds the notification centre dependencies.
type Config struct {
	Notifications repository.Repository[*model.Notification]
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Notifications == nil {
		return errors.NotValidf("nil Notifications")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Service owns notifications. It is also a notify.Publisher.
type Service struct {
	cfg Config
}

var _ notify.Publisher = (*Service)(nil)

// NewService returns a notification centre.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{cfg: cfg}, nil
}

// NewNotification describes a notice. An empty UserID addresses everyone.
type NewNotification struct {
	UserID  string
	Type    string
	Title   string
	Message string
}

// Create stores a notice. Type defaults to announcement.
func (s *Service) Create(ctx context.Context, args NewNotification) (*model.Notification, error) {
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(args.UserID),
		Type:      args.Type,
		Title:     strings.TrimSpace(args.Title),
		Message:   args.Message,
		CreatedAt: s.cfg.Clock.Now(),
	}
	if n.Title == "" {
		return nil, errors.NotValidf("empty notification title")
	}
	if n.UserID == "" {
		n.UserID = model.NotifyAll
	}
	if n.Type == "" {
		n.Type = TypeAnnounce
	}
	if err := s.cfg.Notifications.Save(ctx, n); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Debug("Notification created",
		zap.String("notification_id", n.ID),
		zap.String("user_id", n.UserID),
		zap.String("type", n.Type))
	return n, nil
}

// List returns what userID can see, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	all, err := s.cfg.Notifications.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := all[:0]
	for _, n := range all {
		if !n.For(userID) || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkRead flags a notice as read. Users may only mark notices addressed to
// them or to everyone.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	n, err := s.cfg.Notifications.Get(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !n.For(userID) {
		return nil, errors.Forbiddenf("notification %q", id)
	}
	if n.Read {
		return n, nil
	}
	now := s.cfg.Clock.Now()
	n.Read = true
	n.ReadAt = &now
	if err := s.cfg.Notifications.Save(ctx, n); err != nil {
		return nil, errors.Trace(err)
	}
	return n, nil
}

// Publish turns an order becoming ready into a notice for whoever placed it.
// Other events are ignored.
func (s *Service) Publish(ctx context.Context, event notify.Event) error {
	if event.Kind != notify.OrderStatusChanged || event.Status != string(model.OrderReady) || event.UserID == "" {
		return nil
	}
	_, err := s.Create(ctx, NewNotification{
		UserID:  event.UserID,
		Type:    TypeOrderReady,
		Title:   "Order ready",
		Message: "Order " + event.OrderID + " is ready to serve.",
	})
	return errors.Trace(err)
}
