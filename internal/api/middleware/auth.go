package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecocollect/identity-service/internal/api/metrics"
	"github.com/ecocollect/identity-service/internal/core/ports"
)

// Authenticate extracts the credential, validates it, and injects the
// bearer's identity into the request context. The credential normally
// travels in the session cookie; an Authorization bearer header is
// accepted as a fallback for non-browser clients. Every failure mode is
// the same 401 — the response never distinguishes expired from forged.
func Authenticate(issuer ports.TokenIssuer, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c, cookieName)
			if token == "" {
				metrics.TokenRejectionsTotal.Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			claims, err := issuer.Validate(c.Request().Context(), token)
			if err != nil {
				metrics.TokenRejectionsTotal.Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// extractToken prefers the cookie and falls back to a bearer header.
func extractToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
