package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/ledger"
	"restaurant-service/internal/middleware"
	"restaurant-service/internal/model"
	"restaurant-service/pkg/jwtutil"
	"restaurant-service/pkg/logger"
)

// OrderRequest places an order. Customers identify their table with the
// QR code printed on it; staff may name the table directly.
type OrderRequest struct {
	TableID      string               `json:"table_id"`
	QRCode       string               `json:"qr_code"`
	CustomerName string               `json:"customer_name"`
	Lines        []ledger.LineRequest `json:"lines"`
}

// OrderStatusRequest moves an order along its lifecycle.
type OrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// OrderLinesRequest appends lines to an open order.
type OrderLinesRequest struct {
	Lines []ledger.LineRequest `json:"lines"`
}

// CreateOrder handles placing an order
func (h *Handler) CreateOrder(c echo.Context) error {
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	ctx := c.Request().Context()
	claims := middleware.ClaimsFromContext(c)
	tableID := req.TableID
	switch {
	case req.QRCode != "":
		qr, err := h.cfg.QRCodes.Resolve(ctx, req.QRCode)
		if err != nil {
			return respondError(c, err, "Failed to resolve QR code")
		}
		tableID = qr.TableID
	case claims.Role == jwtutil.RoleCustomer:
		return respondError(c, errors.Forbiddenf("customer orders need a QR code"), "Failed to create order")
	}

	order, err := h.cfg.Ledger.CreateOrder(ctx, ledger.NewOrder{
		TableID:      tableID,
		Lines:        req.Lines,
		CustomerName: req.CustomerName,
		CreatedBy:    claims.UserID,
	})
	if err != nil {
		return respondError(c, err, "Failed to create order")
	}
	logger.FromContext(c).Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("table_id", order.TableID),
		zap.Float64("total", order.Total))
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles retrieving an order. Customers see only their own.
func (h *Handler) GetOrder(c echo.Context) error {
	order, err := h.cfg.Ledger.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve order")
	}
	claims := middleware.ClaimsFromContext(c)
	if claims.Role == jwtutil.RoleCustomer && order.CreatedBy != claims.UserID {
		return respondError(c, errors.NotFoundf("order %q", order.ID), "Failed to retrieve order")
	}
	return c.JSON(http.StatusOK, order)
}

// GetActiveOrder handles retrieving the order a table has in the kitchen
func (h *Handler) GetActiveOrder(c echo.Context) error {
	order, err := h.cfg.Ledger.ActiveOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve active order")
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles retrieving orders filtered by table and status
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.cfg.Ledger.List(c.Request().Context(), ledger.Filter{
		TableID: c.QueryParam("table_id"),
		Status:  model.OrderStatus(c.QueryParam("status")),
	})
	if err != nil {
		return respondError(c, err, "Failed to retrieve orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// AdvanceOrder handles moving an order to its next status
func (h *Handler) AdvanceOrder(c echo.Context) error {
	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	order, err := h.cfg.Ledger.AdvanceStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update order status")
	}
	logger.FromContext(c).Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)))
	return c.JSON(http.StatusOK, order)
}

// AddOrderLines handles adding dishes to an open order
func (h *Handler) AddOrderLines(c echo.Context) error {
	var req OrderLinesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	order, err := h.cfg.Ledger.AddLines(c.Request().Context(), c.Param("id"), req.Lines)
	if err != nil {
		return respondError(c, err, "Failed to add order lines")
	}
	logger.FromContext(c).Info("Order lines added",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)))
	return c.JSON(http.StatusOK, order)
}

// GetReceipt handles rendering an order receipt
func (h *Handler) GetReceipt(c echo.Context) error {
	receipt, err := h.cfg.Ledger.Receipt(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to build receipt")
	}
	return c.JSON(http.StatusOK, receipt)
}

// GetKitchenTicket handles rendering the kitchen ticket of an order
func (h *Handler) GetKitchenTicket(c echo.Context) error {
	ticket, err := h.cfg.Ledger.KitchenTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to build kitchen ticket")
	}
	return c.JSON(http.StatusOK, ticket)
}
