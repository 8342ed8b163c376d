package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/pkg/logger"
)

// statusOf maps a service error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.TableUnavailable), errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.NotValid),
		errors.Is(err, apperror.EmptyOrder),
		errors.Is(err, apperror.InvalidPartySize):
		return http.StatusBadRequest
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.Forbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.InvalidTransition),
		errors.Is(err, apperror.CapacityExceeded),
		errors.Is(err, apperror.ItemUnavailable),
		errors.Is(err, apperror.OrderClosed),
		errors.Is(err, apperror.NoCompletedOrders),
		errors.Is(err, apperror.AlreadyPaid),
		errors.Is(err, apperror.InUse),
		errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperror.Expired):
		return http.StatusGone
	case errors.Is(err, apperror.PaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, apperror.Unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.NotSupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Internal errors are logged
// with their trace and answered with a generic message.
func respondError(c echo.Context, err error, msg string) error {
	status := statusOf(err)
	log := logger.FromContext(c)
	if status == http.StatusInternalServerError {
		log.Error(msg, zap.String("trace", errors.ErrorStack(err)), zap.Error(err))
		return c.JSON(status, echo.Map{"error": msg})
	}
	log.Warn(msg, zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// badRequest answers a malformed body or parameter.
func badRequest(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
}
