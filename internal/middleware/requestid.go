package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/pkg/logger"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = echo.HeaderXRequestID

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(RequestIDHeader, requestID)
			}

			c.Response().Header().Set(RequestIDHeader, requestID)

			// Request-scoped logger for handlers
			logger.WithFields(c, zap.String("request_id", requestID))

			return next(c)
		}
	}
}
