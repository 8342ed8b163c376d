package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/pkg/logger"
)

// WaitlistRequest adds a party to the queue.
type WaitlistRequest struct {
	PartyName string `json:"party_name"`
	PartySize int    `json:"party_size"`
	Phone     string `json:"phone"`
}

// SeatRequest names the table for a waiting party.
type SeatRequest struct {
	TableID string `json:"table_id"`
}

// JoinWaitlist handles a party joining the queue
func (h *Handler) JoinWaitlist(c echo.Context) error {
	var req WaitlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	entry, err := h.cfg.Waitlist.Add(c.Request().Context(), req.PartyName, req.PartySize, req.Phone)
	if err != nil {
		return respondError(c, err, "Failed to join waitlist")
	}
	logger.FromContext(c).Info("Party joined waitlist",
		zap.String("entry_id", entry.ID),
		zap.Int("party_size", entry.PartySize),
		zap.Int("estimated_wait_minutes", entry.EstimatedWaitMinutes))
	return c.JSON(http.StatusCreated, entry)
}

// ListWaitlist handles retrieving the waiting parties
func (h *Handler) ListWaitlist(c echo.Context) error {
	entries, err := h.cfg.Waitlist.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to retrieve waitlist")
	}
	return c.JSON(http.StatusOK, entries)
}

// RemoveFromWaitlist handles a party leaving the queue
func (h *Handler) RemoveFromWaitlist(c echo.Context) error {
	id := c.Param("id")
	if err := h.cfg.Waitlist.Remove(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to remove waitlist entry")
	}
	logger.FromContext(c).Info("Waitlist entry removed", zap.String("entry_id", id))
	return c.NoContent(http.StatusNoContent)
}

// SeatParty handles seating a waiting party at a table
func (h *Handler) SeatParty(c echo.Context) error {
	var req SeatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	entry, err := h.cfg.Waitlist.Seat(c.Request().Context(), c.Param("id"), req.TableID)
	if err != nil {
		return respondError(c, err, "Failed to seat party")
	}
	logger.FromContext(c).Info("Party seated",
		zap.String("entry_id", entry.ID),
		zap.String("table_id", entry.TableID))
	return c.JSON(http.StatusOK, entry)
}
