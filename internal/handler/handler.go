// Package handler exposes the restaurant services over HTTP.
package handler

import (
	"github.com/juju/errors"
	"github.com/juju/ratelimit"
	"github.com/labstack/echo/v4"

	"restaurant-service/internal/billing"
	"restaurant-service/internal/catalog"
	"restaurant-service/internal/floor"
	"restaurant-service/internal/ledger"
	"restaurant-service/internal/middleware"
	"restaurant-service/internal/notification"
	"restaurant-service/internal/qrcode"
	"restaurant-service/internal/reservation"
	"restaurant-service/internal/stats"
	"restaurant-service/internal/waitlist"
	"restaurant-service/pkg/jwtutil"
)

// Config holds the services behind the routes.
type Config struct {
	Catalog       *catalog.Service
	Floor         *floor.Service
	Ledger        *ledger.Service
	Billing       *billing.Service
	Waitlist      *waitlist.Service
	Reservations  *reservation.Service
	Notifications *notification.Service
	Stats         *stats.Service
	QRCodes       *qrcode.Service
	Tokens        middleware.TokenValidator

	// Pinger is checked by /health?check=db when set.
	Pinger Pinger

	// PublicLimit throttles the unauthenticated writes and lookups.
	// Nil disables throttling.
	PublicLimit *ratelimit.Bucket
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Catalog == nil:
		return errors.NotValidf("nil Catalog")
	case c.Floor == nil:
		return errors.NotValidf("nil Floor")
	case c.Ledger == nil:
		return errors.NotValidf("nil Ledger")
	case c.Billing == nil:
		return errors.NotValidf("nil Billing")
	case c.Waitlist == nil:
		return errors.NotValidf("nil Waitlist")
	case c.Reservations == nil:
		return errors.NotValidf("nil Reservations")
	case c.Notifications == nil:
		return errors.NotValidf("nil Notifications")
	case c.Stats == nil:
		return errors.NotValidf("nil Stats")
	case c.QRCodes == nil:
		return errors.NotValidf("nil QRCodes")
	case c.Tokens == nil:
		return errors.NotValidf("nil Tokens")
	}
	return nil
}

// Handler serves the HTTP API.
type Handler struct {
	cfg Config
}

// New returns a Handler.
func New(cfg Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Handler{cfg: cfg}, nil
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	auth := middleware.JWTAuthMiddleware(h.cfg.Tokens)
	staff := middleware.RequireRole(jwtutil.RoleStaff, jwtutil.RoleOwner)
	owner := middleware.RequireRole(jwtutil.RoleOwner)
	limit := middleware.RateLimit(h.cfg.PublicLimit)

	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", h.MetricsHandler)

	// Public
	e.GET("/menu-items", h.ListMenuItems)
	e.GET("/menu-items/:id", h.GetMenuItem)
	e.GET("/menu-items/:id/modifiers", h.ListModifiers)
	e.GET("/qr-codes/:code", h.ResolveQRCode, limit)
	e.POST("/waitlist", h.JoinWaitlist, limit)

	// Any authenticated caller
	e.POST("/orders", h.CreateOrder, auth)
	e.GET("/orders/:id", h.GetOrder, auth)
	e.GET("/reservations", h.ListReservations, auth)
	e.POST("/reservations", h.CreateReservation, auth)
	e.GET("/reservations/:id", h.GetReservation, auth)
	e.DELETE("/reservations/:id", h.CancelReservation, auth)
	e.GET("/notifications", h.ListNotifications, auth)
	e.PUT("/notifications/:id/read", h.MarkNotificationRead, auth)

	// Staff and owners
	e.POST("/menu-items", h.CreateMenuItem, auth, staff)
	e.PUT("/menu-items/:id", h.UpdateMenuItem, auth, staff)
	e.DELETE("/menu-items/:id", h.DeleteMenuItem, auth, staff)

	e.GET("/tables", h.ListTables, auth, staff)
	e.POST("/tables", h.CreateTable, auth, staff)
	e.GET("/tables/:id", h.GetTable, auth, staff)
	e.PUT("/tables/:id", h.UpdateTable, auth, staff)
	e.DELETE("/tables/:id", h.DeleteTable, auth, staff)
	e.POST("/tables/:id/allocate", h.AllocateTable, auth, staff)
	e.POST("/tables/:id/reserve", h.ReserveTable, auth, staff)
	e.POST("/tables/:id/release", h.ReleaseTable, auth, staff)
	e.GET("/tables/:id/order", h.GetActiveOrder, auth, staff)

	e.GET("/orders", h.ListOrders, auth, staff)
	e.PUT("/orders/:id", h.AdvanceOrder, auth, staff)
	e.POST("/orders/:id/lines", h.AddOrderLines, auth, staff)
	e.GET("/orders/:id/receipt", h.GetReceipt, auth, staff)
	e.GET("/orders/:id/kitchen-ticket", h.GetKitchenTicket, auth, staff)

	e.POST("/bills/:tableId", h.GenerateBill, auth, staff)
	e.GET("/bills", h.ListBills, auth, staff)
	e.GET("/bills/:id", h.GetBill, auth, staff)
	e.POST("/bills/:id/pay", h.PayBill, auth, staff)
	e.POST("/bills/:id/settle", h.SettleBill, auth, staff)

	e.GET("/waitlist", h.ListWaitlist, auth, staff)
	e.DELETE("/waitlist/:id", h.RemoveFromWaitlist, auth, staff)
	e.POST("/waitlist/:id/seat", h.SeatParty, auth, staff)

	e.PUT("/reservations/:id", h.UpdateReservation, auth, staff)
	e.POST("/reservations/:id/seat", h.SeatReservation, auth, staff)
	e.POST("/notifications", h.CreateNotification, auth, staff)

	e.GET("/stats", h.GetStats, auth, staff)
	e.POST("/qr-codes", h.GenerateQRCode, auth, staff)

	// Owners only
	e.GET("/analytics/summary", h.GetSummary, auth, owner)
	e.POST("/menu-items/:id/modifiers", h.CreateModifier, auth, owner)
	e.DELETE("/menu-items/:id/modifiers/:modifierId", h.DeleteModifier, auth, owner)
}
