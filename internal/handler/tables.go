package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/floor"
	"restaurant-service/internal/model"
	"restaurant-service/pkg/logger"
)

// TableRequest is the body of table create and update calls. Status is
// only honoured on update.
type TableRequest struct {
	Number   *int              `json:"number"`
	Capacity *int              `json:"capacity"`
	Position *model.Position   `json:"position"`
	Status   model.TableStatus `json:"status"`
}

// PartyRequest seats or reserves a party.
type PartyRequest struct {
	PartyName string `json:"party_name"`
	PartySize int    `json:"party_size"`
}

// ListTables handles retrieving the floor plan
func (h *Handler) ListTables(c echo.Context) error {
	tables, err := h.cfg.Floor.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to retrieve tables")
	}
	return c.JSON(http.StatusOK, tables)
}

// GetTable handles retrieving a single table
func (h *Handler) GetTable(c echo.Context) error {
	table, err := h.cfg.Floor.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve table")
	}
	return c.JSON(http.StatusOK, table)
}

// CreateTable handles adding a table to the floor
func (h *Handler) CreateTable(c echo.Context) error {
	var req TableRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Number == nil || req.Capacity == nil {
		return respondError(c, errors.NotValidf("number and capacity"), "Failed to create table")
	}

	args := floor.NewTable{Number: *req.Number, Capacity: *req.Capacity}
	if req.Position != nil {
		args.Position = *req.Position
	}
	table, err := h.cfg.Floor.Create(c.Request().Context(), args)
	if err != nil {
		return respondError(c, err, "Failed to create table")
	}
	logger.FromContext(c).Info("Table created",
		zap.String("table_id", table.ID),
		zap.Int("table_number", table.Number))
	return c.JSON(http.StatusCreated, table)
}

// UpdateTable handles editing a table and setting its status
func (h *Handler) UpdateTable(c echo.Context) error {
	var req TableRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	update := floor.TableUpdate{
		Number:   req.Number,
		Capacity: req.Capacity,
		Position: req.Position,
	}
	if req.Status != "" {
		update.Status = &req.Status
	}
	table, err := h.cfg.Floor.Update(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return respondError(c, err, "Failed to update table")
	}
	logger.FromContext(c).Info("Table updated",
		zap.String("table_id", table.ID),
		zap.String("status", string(table.Status)))
	return c.JSON(http.StatusOK, table)
}

// DeleteTable handles removing a table
func (h *Handler) DeleteTable(c echo.Context) error {
	id := c.Param("id")
	if err := h.cfg.Floor.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete table")
	}
	logger.FromContext(c).Info("Table deleted", zap.String("table_id", id))
	return c.NoContent(http.StatusNoContent)
}

// AllocateTable handles seating a party
func (h *Handler) AllocateTable(c echo.Context) error {
	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	table, err := h.cfg.Floor.Allocate(c.Request().Context(), c.Param("id"), req.PartyName, req.PartySize)
	if err != nil {
		return respondError(c, err, "Failed to allocate table")
	}
	logger.FromContext(c).Info("Table allocated",
		zap.String("table_id", table.ID),
		zap.Int("party_size", req.PartySize))
	return c.JSON(http.StatusOK, table)
}

// ReserveTable handles holding a table for a party
func (h *Handler) ReserveTable(c echo.Context) error {
	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	table, err := h.cfg.Floor.Reserve(c.Request().Context(), c.Param("id"), req.PartyName, req.PartySize)
	if err != nil {
		return respondError(c, err, "Failed to reserve table")
	}
	logger.FromContext(c).Info("Table reserved",
		zap.String("table_id", table.ID),
		zap.Int("party_size", req.PartySize))
	return c.JSON(http.StatusOK, table)
}

// ReleaseTable handles freeing a table
func (h *Handler) ReleaseTable(c echo.Context) error {
	table, err := h.cfg.Floor.Release(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to release table")
	}
	logger.FromContext(c).Info("Table released", zap.String("table_id", table.ID))
	return c.JSON(http.StatusOK, table)
}
