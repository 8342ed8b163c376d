package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStats handles the live floor snapshot
func (h *Handler) GetStats(c echo.Context) error {
	snap, err := h.cfg.Stats.Snapshot(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to compute stats")
	}
	return c.JSON(http.StatusOK, snap)
}

// GetSummary handles the owner's sales overview
func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.cfg.Stats.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to compute summary")
	}
	return c.JSON(http.StatusOK, sum)
}
