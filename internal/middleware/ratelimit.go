package middleware

import (
	"net/http"

	"github.com/juju/ratelimit"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/pkg/logger"
)

// RateLimit answers 429 once bucket is drained. A nil bucket disables it.
func RateLimit(bucket *ratelimit.Bucket) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if bucket == nil {
			return next
		}
		return func(c echo.Context) error {
			if bucket.TakeAvailable(1) == 0 {
				logger.FromContext(c).Warn("Rate limit exceeded",
					zap.String("path", c.Path()),
					zap.String("ip", c.RealIP()))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
