package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tenant-platform/pkg/jwtutil"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// SessionChecker reports whether a session key still resolves to a live
// session. Satisfied by the auth service.
type SessionChecker interface {
	IsSessionLive(ctx context.Context, sessionKey string) (bool, error)
}

// AuthMiddleware validates the bearer token and checks that its session
// is still live, so tokens outlive neither logout nor logout-all.
func AuthMiddleware(sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtutil.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			live, err := sessions.IsSessionLive(c.Request().Context(), claims.SessionKey)
			if err != nil {
				log.Error("Failed to check session", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session check failed"})
			}
			if !live {
				prometheus.RecordAuthError("session_closed")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session is no longer active"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("session_key", claims.SessionKey)
			c.Set("is_admin", claims.IsAdmin)

			return next(c)
		}
	}
}

// RequireAdmin gates the admin surface. Only control-plane admins may
// pass; tenant users get a generic denial.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, ok := c.Get("is_admin").(bool)
		if !ok || !isAdmin {
			prometheus.RecordAuthError("admin_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
		return next(c)
	}
}
