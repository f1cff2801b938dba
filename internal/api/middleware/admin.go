package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// RequireAdmin rejects requests whose resolved user lacks the admin flag.
// It assumes Auth already ran and attached the user to the context.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(userContextKey).(*domain.User)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
		}
		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// UserFromContext returns the user attached by Auth, or nil when absent.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
