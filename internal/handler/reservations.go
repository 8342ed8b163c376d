package handler

import (
	"net/http"
	"time"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/middleware"
	"restaurant-service/internal/model"
	"restaurant-service/internal/reservation"
	"restaurant-service/pkg/jwtutil"
	"restaurant-service/pkg/logger"
)

// ReservationRequest is the body of reservation create and update calls.
// Omitted fields keep their value on update.
type ReservationRequest struct {
	CustomerName  *string                  `json:"customer_name"`
	CustomerPhone *string                  `json:"customer_phone"`
	PartySize     *int                     `json:"party_size"`
	DateTime      *time.Time               `json:"date_time"`
	TableID       *string                  `json:"table_id"`
	Notes         *string                  `json:"notes"`
	Status        *model.ReservationStatus `json:"status"`
}

func (r ReservationRequest) newReservation(customerID string) reservation.NewReservation {
	args := reservation.NewReservation{CustomerID: customerID}
	if r.CustomerName != nil {
		args.CustomerName = *r.CustomerName
	}
	if r.CustomerPhone != nil {
		args.CustomerPhone = *r.CustomerPhone
	}
	if r.PartySize != nil {
		args.PartySize = *r.PartySize
	}
	if r.DateTime != nil {
		args.DateTime = *r.DateTime
	}
	if r.TableID != nil {
		args.TableID = *r.TableID
	}
	if r.Notes != nil {
		args.Notes = *r.Notes
	}
	return args
}

// CreateReservation handles booking a table for later
func (h *Handler) CreateReservation(c echo.Context) error {
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	claims := middleware.ClaimsFromContext(c)
	r, err := h.cfg.Reservations.Create(c.Request().Context(), req.newReservation(claims.UserID))
	if err != nil {
		return respondError(c, err, "Failed to create reservation")
	}
	logger.FromContext(c).Info("Reservation created",
		zap.String("reservation_id", r.ID),
		zap.Int("party_size", r.PartySize),
		zap.Time("date_time", r.DateTime))
	return c.JSON(http.StatusCreated, r)
}

// ListReservations handles listing bookings. Customers see only their own.
// date=YYYY-MM-DD and status narrow the list.
func (h *Handler) ListReservations(c echo.Context) error {
	filter := reservation.Filter{Status: model.ReservationStatus(c.QueryParam("status"))}
	if date := c.QueryParam("date"); date != "" {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return respondError(c, errors.NotValidf("date %q", date), "Failed to retrieve reservations")
		}
		filter.Day = day
	}
	if claims := middleware.ClaimsFromContext(c); claims.Role == jwtutil.RoleCustomer {
		filter.CustomerID = claims.UserID
	}
	list, err := h.cfg.Reservations.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "Failed to retrieve reservations")
	}
	return c.JSON(http.StatusOK, list)
}

// GetReservation handles retrieving a booking. Customers see only their own.
func (h *Handler) GetReservation(c echo.Context) error {
	r, err := h.cfg.Reservations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve reservation")
	}
	claims := middleware.ClaimsFromContext(c)
	if claims.Role == jwtutil.RoleCustomer && r.CustomerID != claims.UserID {
		return respondError(c, errors.NotFoundf("reservation %q", r.ID), "Failed to retrieve reservation")
	}
	return c.JSON(http.StatusOK, r)
}

// UpdateReservation handles staff edits and status changes
func (h *Handler) UpdateReservation(c echo.Context) error {
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	r, err := h.cfg.Reservations.Update(c.Request().Context(), c.Param("id"), reservation.Update{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PartySize:     req.PartySize,
		DateTime:      req.DateTime,
		TableID:       req.TableID,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		return respondError(c, err, "Failed to update reservation")
	}
	logger.FromContext(c).Info("Reservation updated",
		zap.String("reservation_id", r.ID),
		zap.String("status", string(r.Status)))
	return c.JSON(http.StatusOK, r)
}

// CancelReservation handles withdrawing a booking. Customers may cancel
// only their own.
func (h *Handler) CancelReservation(c echo.Context) error {
	var owner string
	if claims := middleware.ClaimsFromContext(c); claims.Role == jwtutil.RoleCustomer {
		owner = claims.UserID
	}
	r, err := h.cfg.Reservations.Cancel(c.Request().Context(), c.Param("id"), owner)
	if err != nil {
		return respondError(c, err, "Failed to cancel reservation")
	}
	logger.FromContext(c).Info("Reservation cancelled", zap.String("reservation_id", r.ID))
	return c.JSON(http.StatusOK, r)
}

// SeatReservation handles seating a booked party. The body may name a
// different table.
func (h *Handler) SeatReservation(c echo.Context) error {
	var req SeatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	r, err := h.cfg.Reservations.Seat(c.Request().Context(), c.Param("id"), req.TableID)
	if err != nil {
		return respondError(c, err, "Failed to seat reservation")
	}
	logger.FromContext(c).Info("Reservation seated",
		zap.String("reservation_id", r.ID),
		zap.String("table_id", r.TableID))
	return c.JSON(http.StatusOK, r)
}
