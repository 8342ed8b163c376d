package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/catalog"
	"restaurant-service/internal/model"
	"restaurant-service/pkg/logger"
)

// MenuItemRequest is the body of menu item create and update calls.
// Omitted fields keep their value on update.
type MenuItemRequest struct {
	Name            *string               `json:"name"`
	Description     *string               `json:"description"`
	Price           *float64              `json:"price"`
	Category        *string               `json:"category"`
	Status          *model.MenuItemStatus `json:"status"`
	PrepTimeMinutes *int                  `json:"prep_time_minutes"`
	Popularity      *int                  `json:"popularity"`
}

func (r MenuItemRequest) newItem() catalog.NewMenuItem {
	var args catalog.NewMenuItem
	if r.Name != nil {
		args.Name = *r.Name
	}
	if r.Description != nil {
		args.Description = *r.Description
	}
	if r.Price != nil {
		args.Price = *r.Price
	}
	if r.Category != nil {
		args.Category = *r.Category
	}
	if r.Status != nil {
		args.Status = *r.Status
	}
	if r.PrepTimeMinutes != nil {
		args.PrepTimeMinutes = *r.PrepTimeMinutes
	}
	if r.Popularity != nil {
		args.Popularity = *r.Popularity
	}
	return args
}

func (r MenuItemRequest) update() catalog.MenuItemUpdate {
	return catalog.MenuItemUpdate{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Category:        r.Category,
		Status:          r.Status,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Popularity:      r.Popularity,
	}
}

// ListMenuItems handles retrieving the menu with optional filtering
func (h *Handler) ListMenuItems(c echo.Context) error {
	log := logger.FromContext(c)

	filter := catalog.Filter{Category: c.QueryParam("category")}
	if raw := c.QueryParam("orderable"); raw != "" {
		orderable, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, err)
		}
		filter.Orderable = orderable
	}

	items, err := h.cfg.Catalog.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "Failed to retrieve menu items")
	}
	log.Debug("Menu items retrieved", zap.Int("count", len(items)))
	return c.JSON(http.StatusOK, items)
}

// GetMenuItem handles retrieving a single menu item
func (h *Handler) GetMenuItem(c echo.Context) error {
	item, err := h.cfg.Catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve menu item")
	}
	return c.JSON(http.StatusOK, item)
}

// CreateMenuItem handles adding a dish to the menu
func (h *Handler) CreateMenuItem(c echo.Context) error {
	var req MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	item, err := h.cfg.Catalog.Create(c.Request().Context(), req.newItem())
	if err != nil {
		return respondError(c, err, "Failed to create menu item")
	}
	logger.FromContext(c).Info("Menu item created",
		zap.String("menu_item_id", item.ID),
		zap.String("name", item.Name),
		zap.Float64("price", item.Price))
	return c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem handles editing a menu item
func (h *Handler) UpdateMenuItem(c echo.Context) error {
	var req MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	item, err := h.cfg.Catalog.Update(c.Request().Context(), c.Param("id"), req.update())
	if err != nil {
		return respondError(c, err, "Failed to update menu item")
	}
	logger.FromContext(c).Info("Menu item updated", zap.String("menu_item_id", item.ID))
	return c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles removing a menu item
func (h *Handler) DeleteMenuItem(c echo.Context) error {
	id := c.Param("id")
	if err := h.cfg.Catalog.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete menu item")
	}
	logger.FromContext(c).Info("Menu item deleted", zap.String("menu_item_id", id))
	return c.NoContent(http.StatusNoContent)
}

// ModifierRequest adds an option group to a menu item.
type ModifierRequest struct {
	Name     string                      `json:"name"`
	Type     model.ModifierType          `json:"type"`
	Required bool                        `json:"required"`
	Options  []catalog.NewModifierOption `json:"options"`
}

// ListModifiers handles retrieving the option groups of a menu item
func (h *Handler) ListModifiers(c echo.Context) error {
	ctx := c.Request().Context()
	item, err := h.cfg.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve modifiers")
	}
	mods, err := h.cfg.Catalog.Modifiers(ctx, item.ID)
	if err != nil {
		return respondError(c, err, "Failed to retrieve modifiers")
	}
	if mods == nil {
		mods = []*model.Modifier{}
	}
	return c.JSON(http.StatusOK, mods)
}

// CreateModifier handles adding an option group to a menu item
func (h *Handler) CreateModifier(c echo.Context) error {
	var req ModifierRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	mod, err := h.cfg.Catalog.CreateModifier(c.Request().Context(), catalog.NewModifier{
		MenuItemID: c.Param("id"),
		Name:       req.Name,
		Type:       req.Type,
		Required:   req.Required,
		Options:    req.Options,
	})
	if err != nil {
		return respondError(c, err, "Failed to create modifier")
	}
	logger.FromContext(c).Info("Modifier created",
		zap.String("modifier_id", mod.ID),
		zap.String("menu_item_id", mod.MenuItemID))
	return c.JSON(http.StatusCreated, mod)
}

// DeleteModifier handles removing an option group
func (h *Handler) DeleteModifier(c echo.Context) error {
	itemID, modID := c.Param("id"), c.Param("modifierId")
	if err := h.cfg.Catalog.DeleteModifier(c.Request().Context(), itemID, modID); err != nil {
		return respondError(c, err, "Failed to delete modifier")
	}
	logger.FromContext(c).Info("Modifier deleted",
		zap.String("modifier_id", modID),
		zap.String("menu_item_id", itemID))
	return c.NoContent(http.StatusNoContent)
}
