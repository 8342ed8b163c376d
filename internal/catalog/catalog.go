// Package catalog manages the menu.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
)

// UsageFunc reports whether an open order references the menu item.
type UsageFunc func(ctx context.Context, itemID string) (bool, error)

// Config holds the Catalog dependencies.
type Config struct {
	Items  repository.Repository[*model.MenuItem]
	Clock  clock.Clock
	Logger *zap.Logger

	// Modifiers holds the option groups offered with items. A nil store
	// means the menu has no modifiers.
	Modifiers repository.Repository[*model.Modifier]

	// InUse guards deletion. A nil InUse allows every delete.
	InUse UsageFunc
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Items == nil {
		return errors.NotValidf("nil Items")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Service owns the menu items.
type Service struct {
	cfg Config
}

// NewService returns a Catalog service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{cfg: cfg}, nil
}

// NewMenuItem describes a dish added to the menu.
type NewMenuItem struct {
	Name            string
	Description     string
	Price           float64
	Category        string
	Status          model.MenuItemStatus
	PrepTimeMinutes int
	Popularity      int
}

// MenuItemUpdate lists the editable fields of a menu item. Nil fields are
// left unchanged.
type MenuItemUpdate struct {
	Name            *string
	Description     *string
	Price           *float64
	Category        *string
	Status          *model.MenuItemStatus
	PrepTimeMinutes *int
	Popularity      *int
}

// Filter narrows List.
type Filter struct {
	Category string
	// Orderable drops unavailable items.
	Orderable bool
}

// Create adds a menu item. Status defaults to available.
func (s *Service) Create(ctx context.Context, args NewMenuItem) (*model.MenuItem, error) {
	if args.Status == "" {
		args.Status = model.MenuItemAvailable
	}
	now := s.cfg.Clock.Now()
	item := &model.MenuItem{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(args.Name),
		Description:     args.Description,
		Price:           model.RoundCents(args.Price),
		Category:        args.Category,
		Status:          args.Status,
		PrepTimeMinutes: args.PrepTimeMinutes,
		Popularity:      args.Popularity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validate(item); err != nil {
		return nil, errors.Trace(err)
	}
	if err := s.cfg.Items.Save(ctx, item); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Menu item created",
		zap.String("menu_item_id", item.ID),
		zap.String("name", item.Name),
		zap.Float64("price", item.Price))
	return item, nil
}

// Get returns a menu item.
func (s *Service) Get(ctx context.Context, itemID string) (*model.MenuItem, error) {
	item, err := s.cfg.Items.Get(ctx, itemID)
	return item, errors.Trace(err)
}

// List returns the menu in insertion order.
func (s *Service) List(ctx context.Context, filter Filter) ([]*model.MenuItem, error) {
	items, err := s.cfg.Items.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := items[:0]
	for _, item := range items {
		if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
			continue
		}
		if filter.Orderable && item.Status == model.MenuItemUnavailable {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Update applies a MenuItemUpdate.
func (s *Service) Update(ctx context.Context, itemID string, update MenuItemUpdate) (*model.MenuItem, error) {
	item, err := s.cfg.Items.Get(ctx, itemID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if update.Name != nil {
		item.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Price != nil {
		item.Price = model.RoundCents(*update.Price)
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.PrepTimeMinutes != nil {
		item.PrepTimeMinutes = *update.PrepTimeMinutes
	}
	if update.Popularity != nil {
		item.Popularity = *update.Popularity
	}
	if err := validate(item); err != nil {
		return nil, errors.Trace(err)
	}
	item.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Items.Save(ctx, item); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Menu item updated",
		zap.String("menu_item_id", item.ID),
		zap.String("status", string(item.Status)))
	return item, nil
}

// Delete removes a menu item unless an open order still references it.
func (s *Service) Delete(ctx context.Context, itemID string) error {
	if _, err := s.cfg.Items.Get(ctx, itemID); err != nil {
		return errors.Trace(err)
	}
	if s.cfg.InUse != nil {
		used, err := s.cfg.InUse(ctx, itemID)
		if err != nil {
			return errors.Trace(err)
		}
		if used {
			return errors.Annotatef(apperror.InUse, "menu item %q is on an open order", itemID)
		}
	}
	if err := s.cfg.Items.Delete(ctx, itemID); err != nil {
		return errors.Trace(err)
	}
	if err := s.dropModifiers(ctx, itemID); err != nil {
		return errors.Trace(err)
	}
	s.cfg.Logger.Info("Menu item deleted", zap.String("menu_item_id", itemID))
	return nil
}

func validate(item *model.MenuItem) error {
	if item.Name == "" {
		return errors.NotValidf("empty name")
	}
	if item.Price <= 0 {
		return errors.NotValidf("price %v", item.Price)
	}
	if item.PrepTimeMinutes <= 0 {
		return errors.NotValidf("prep time %d", item.PrepTimeMinutes)
	}
	if !item.Status.Valid() {
		return errors.NotValidf("menu item status %q", item.Status)
	}
	return nil
}
