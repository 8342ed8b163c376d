package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/pkg/jwtutil"
	"restaurant-service/pkg/logger"
	"restaurant-service/prometheus"
)

// ClaimsKey is the echo context key holding the verified claims
const ClaimsKey = "claims"

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*jwtutil.Claims, error)
}

// JWTAuthMiddleware creates a middleware that validates JWT tokens
func JWTAuthMiddleware(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			prometheus.RecordAuthAttempt()
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				prometheus.RecordAuthError()
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing authorization header"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				prometheus.RecordAuthError()
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid authorization header format"})
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				prometheus.RecordAuthError()
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}

			c.Set(ClaimsKey, claims)
			logger.WithFields(c,
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role)).
				Debug("JWT token validated successfully")

			return next(c)
		}
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after JWTAuthMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthenticated"})
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			prometheus.RecordForbidden()
			logger.FromContext(c).Warn("Role not permitted",
				zap.String("role", claims.Role),
				zap.Strings("allowed", roles))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
		}
	}
}

// ClaimsFromContext returns the verified claims, or nil outside an
// authenticated route.
func ClaimsFromContext(c echo.Context) *jwtutil.Claims {
	claims, _ := c.Get(ClaimsKey).(*jwtutil.Claims)
	return claims
}
