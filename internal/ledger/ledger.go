// Package ledger records table orders and moves them through the kitchen.
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/cart"
	"restaurant-service/internal/model"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/repository"
	"restaurant-service/prometheus"
)

// Catalog resolves menu items and the modifiers chosen for them.
type Catalog interface {
	Get(ctx context.Context, itemID string) (*model.MenuItem, error)
	ResolveModifiers(ctx context.Context, item *model.MenuItem, choices []model.ModifierChoice) ([]model.LineModifier, error)
}

// Floor resolves tables.
type Floor interface {
	Get(ctx context.Context, tableID string) (*model.Table, error)
}

// Config holds the Ledger dependencies.
type Config struct {
	Orders    repository.Repository[*model.Order]
	Catalog   Catalog
	Floor     Floor
	Publisher notify.Publisher
	Clock     clock.Clock
	Logger    *zap.Logger

	TaxRate        float64
	RestaurantName string
	Currency       string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Orders == nil {
		return errors.NotValidf("nil Orders")
	}
	if c.Catalog == nil {
		return errors.NotValidf("nil Catalog")
	}
	if c.Floor == nil {
		return errors.NotValidf("nil Floor")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return errors.NotValidf("tax rate %v", c.TaxRate)
	}
	return nil
}

// Service owns orders.
type Service struct {
	cfg Config
}

// NewService returns a Ledger service. A nil Publisher drops events.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = notify.Nop{}
	}
	return &Service{cfg: cfg}, nil
}

// LineRequest asks for quantity of a menu item with optional modifiers.
type LineRequest struct {
	MenuItemID      string                 `json:"menu_item_id"`
	Quantity        int                    `json:"quantity"`
	SpecialRequests string                 `json:"special_requests,omitempty"`
	Modifiers       []model.ModifierChoice `json:"modifiers,omitempty"`
}

// NewOrder describes an order placed for a table.
type NewOrder struct {
	TableID      string
	Lines        []LineRequest
	CustomerName string
	CreatedBy    string
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	TableID string
	Status  model.OrderStatus
}

// CreateOrder places a pending order. Unit prices are taken from the
// catalog now and do not follow later price changes.
func (s *Service) CreateOrder(ctx context.Context, args NewOrder) (*model.Order, error) {
	if len(args.Lines) == 0 {
		return nil, errors.Annotatef(apperror.EmptyOrder, "order for table %q", args.TableID)
	}
	if _, err := s.cfg.Floor.Get(ctx, args.TableID); err != nil {
		return nil, errors.Trace(err)
	}
	c := cart.New()
	if err := s.fill(ctx, c, args.Lines); err != nil {
		return nil, errors.Trace(err)
	}

	now := s.cfg.Clock.Now()
	order := &model.Order{
		ID:           uuid.NewString(),
		TableID:      args.TableID,
		Status:       model.OrderPending,
		CustomerName: strings.TrimSpace(args.CustomerName),
		CreatedBy:    args.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.price(order, c)
	if err := s.cfg.Orders.Save(ctx, order); err != nil {
		return nil, errors.Trace(err)
	}

	prometheus.RecordOrderCreated()
	s.cfg.Logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("table_id", order.TableID),
		zap.Int("lines", len(order.Lines)),
		zap.Float64("total", order.Total))
	s.publish(ctx, notify.OrderCreated, order)
	return order, nil
}

// AddLines adds to an order the kitchen has not finished. Lines for the
// same item and special requests are merged.
func (s *Service) AddLines(ctx context.Context, orderID string, lines []LineRequest) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, errors.Annotatef(apperror.EmptyOrder, "adding to order %q", orderID)
	}
	order, err := s.cfg.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if order.Status != model.OrderPending && order.Status != model.OrderPreparing {
		return nil, errors.Annotatef(apperror.OrderClosed, "order %q is %s", orderID, order.Status)
	}
	c := cart.FromOrderLines(order.Lines)
	if err := s.fill(ctx, c, lines); err != nil {
		return nil, errors.Trace(err)
	}
	s.price(order, c)
	order.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Orders.Save(ctx, order); err != nil {
		return nil, errors.Trace(err)
	}

	s.cfg.Logger.Info("Order lines added",
		zap.String("order_id", order.ID),
		zap.Int("added", len(lines)),
		zap.Float64("total", order.Total))
	s.publish(ctx, notify.OrderLinesAdded, order)
	return order, nil
}

// AdvanceStatus moves an order to the next status in
// pending, preparing, ready, completed, paid. Skipping or going back is an
// InvalidTransition.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next model.OrderStatus) (*model.Order, error) {
	if next.Index() < 0 {
		return nil, errors.NotValidf("order status %q", next)
	}
	order, err := s.cfg.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if next.Index() != order.Status.Index()+1 {
		return nil, errors.Annotatef(apperror.InvalidTransition, "order %q from %s to %s", orderID, order.Status, next)
	}

	previous := order.Status
	now := s.cfg.Clock.Now()
	order.Status = next
	order.UpdatedAt = now
	if next == model.OrderCompleted {
		order.CompletedAt = &now
	}
	if err := s.cfg.Orders.Save(ctx, order); err != nil {
		return nil, errors.Trace(err)
	}

	prometheus.RecordOrderTransition(string(next))
	s.cfg.Logger.Info("Order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))
	s.publish(ctx, notify.OrderStatusChanged, order)
	return order, nil
}

// MarkPaid moves a completed order to paid. Orders already paid are left
// alone.
func (s *Service) MarkPaid(ctx context.Context, orderID string) error {
	order, err := s.cfg.Orders.Get(ctx, orderID)
	if err != nil {
		return errors.Trace(err)
	}
	if order.Status == model.OrderPaid {
		return nil
	}
	_, err = s.AdvanceStatus(ctx, orderID, model.OrderPaid)
	return errors.Trace(err)
}

// Get returns an order.
func (s *Service) Get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.cfg.Orders.Get(ctx, orderID)
	return order, errors.Trace(err)
}

// List returns the orders matching filter, oldest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*model.Order, error) {
	orders, err := s.cfg.Orders.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := orders[:0]
	for _, o := range orders {
		if filter.TableID != "" && o.TableID != filter.TableID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// ActiveOrder returns the newest order for the table that the kitchen is
// still working on.
func (s *Service) ActiveOrder(ctx context.Context, tableID string) (*model.Order, error) {
	orders, err := s.List(ctx, Filter{TableID: tableID})
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].Status.Open() {
			return orders[i], nil
		}
	}
	return nil, errors.NotFoundf("active order for table %q", tableID)
}

// ReferencesMenuItem reports whether an open order contains the item.
func (s *Service) ReferencesMenuItem(ctx context.Context, itemID string) (bool, error) {
	orders, err := s.cfg.Orders.List(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	for _, o := range orders {
		if !o.Status.Open() {
			continue
		}
		for _, l := range o.Lines {
			if l.MenuItemID == itemID {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasUnpaidOrders reports whether any order at the table has not been paid.
func (s *Service) HasUnpaidOrders(ctx context.Context, tableID string) (bool, error) {
	orders, err := s.cfg.Orders.List(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	for _, o := range orders {
		if o.TableID == tableID && o.Status != model.OrderPaid {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) fill(ctx context.Context, c *cart.Cart, lines []LineRequest) error {
	for _, l := range lines {
		if l.Quantity <= 0 {
			return errors.NotValidf("quantity %d for menu item %q", l.Quantity, l.MenuItemID)
		}
		item, err := s.cfg.Catalog.Get(ctx, l.MenuItemID)
		if err != nil {
			return errors.Trace(err)
		}
		if item.Status == model.MenuItemUnavailable {
			return errors.Annotatef(apperror.ItemUnavailable, "%q", item.Name)
		}
		mods, err := s.cfg.Catalog.ResolveModifiers(ctx, item, l.Modifiers)
		if err != nil {
			return errors.Trace(err)
		}
		if _, err := c.AddQuantity(item, l.Quantity, strings.TrimSpace(l.SpecialRequests), mods...); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *Service) price(order *model.Order, c *cart.Cart) {
	order.Lines = c.OrderLines()
	order.Subtotal = c.Total()
	order.Tax = model.RoundCents(order.Subtotal * s.cfg.TaxRate)
	order.Total = model.RoundCents(order.Subtotal + order.Tax)
}

func (s *Service) publish(ctx context.Context, kind string, order *model.Order) {
	event := notify.Event{
		Kind:       kind,
		OrderID:    order.ID,
		TableID:    order.TableID,
		UserID:     order.CreatedBy,
		Status:     string(order.Status),
		Total:      order.Total,
		OccurredAt: s.cfg.Clock.Now(),
	}
	if err := s.cfg.Publisher.Publish(ctx, event); err != nil {
		prometheus.RecordNotificationError()
		s.cfg.Logger.Warn("Failed to publish order event",
			zap.String("order_id", order.ID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}
