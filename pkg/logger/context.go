package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKey is the echo context key holding the request-scoped logger
const ContextKey = "logger"

// FromContext retrieves the request-scoped logger from the Echo context
func FromContext(c echo.Context) *zap.Logger {
	logger, ok := c.Get(ContextKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return logger
}

// WithFields stores a logger enriched with fields on the Echo context
func WithFields(c echo.Context, fields ...zap.Field) *zap.Logger {
	logger := FromContext(c).With(fields...)
	c.Set(ContextKey, logger)
	return logger
}
