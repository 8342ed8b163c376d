package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/model"
	"restaurant-service/pkg/logger"
)

// PaymentRequest settles a bill.
type PaymentRequest struct {
	Method model.PaymentMethod `json:"method"`
}

// SettleResponse lists orders that could not be marked paid.
type SettleResponse struct {
	BillID       string   `json:"bill_id"`
	FailedOrders []string `json:"failed_orders"`
}

// GenerateBill handles billing a table's completed orders
func (h *Handler) GenerateBill(c echo.Context) error {
	bill, err := h.cfg.Billing.GenerateBill(c.Request().Context(), c.Param("tableId"))
	if err != nil {
		return respondError(c, err, "Failed to generate bill")
	}
	logger.FromContext(c).Info("Bill generated",
		zap.String("bill_id", bill.ID),
		zap.String("table_id", bill.TableID),
		zap.Float64("total", bill.TotalAmount))
	return c.JSON(http.StatusCreated, bill)
}

// ListBills handles retrieving bills, optionally for one table. With
// open=true it returns the table's unpaid bill.
func (h *Handler) ListBills(c echo.Context) error {
	ctx := c.Request().Context()
	tableID := c.QueryParam("table_id")
	if c.QueryParam("open") == "true" {
		if tableID == "" {
			return respondError(c, errors.NotValidf("open bill lookup without table_id"), "table_id is required")
		}
		bill, err := h.cfg.Billing.OpenBill(ctx, tableID)
		if err != nil {
			return respondError(c, err, "Failed to retrieve open bill")
		}
		return c.JSON(http.StatusOK, bill)
	}

	bills, err := h.cfg.Billing.List(ctx, tableID)
	if err != nil {
		return respondError(c, err, "Failed to retrieve bills")
	}
	return c.JSON(http.StatusOK, bills)
}

// GetBill handles retrieving a single bill
func (h *Handler) GetBill(c echo.Context) error {
	bill, err := h.cfg.Billing.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve bill")
	}
	return c.JSON(http.StatusOK, bill)
}

// PayBill handles taking payment for a bill
func (h *Handler) PayBill(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	bill, err := h.cfg.Billing.PayBill(c.Request().Context(), c.Param("id"), req.Method)
	if err != nil {
		return respondError(c, err, "Failed to pay bill")
	}
	logger.FromContext(c).Info("Bill paid",
		zap.String("bill_id", bill.ID),
		zap.String("method", string(bill.PaymentMethod)),
		zap.Float64("total", bill.TotalAmount))
	return c.JSON(http.StatusOK, bill)
}

// SettleBill handles retrying the order side of a paid bill
func (h *Handler) SettleBill(c echo.Context) error {
	id := c.Param("id")
	failed, err := h.cfg.Billing.SettleOrders(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to settle bill orders")
	}
	if failed == nil {
		failed = []string{}
	}
	if len(failed) > 0 {
		logger.FromContext(c).Warn("Bill orders left unsettled",
			zap.String("bill_id", id),
			zap.Strings("order_ids", failed))
	}
	return c.JSON(http.StatusOK, SettleResponse{BillID: id, FailedOrders: failed})
}
