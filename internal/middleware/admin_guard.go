package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
)

const (
	HeaderAdminEmail = "x-admin-email"
	HeaderUserEmail  = "x-user-email"

	adminEmailKey = "admin_email"
	userEmailKey  = "user_email"
)

// AdminGuard lets a request through only when x-admin-email names the admin.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := marketplace.NormalizeEmail(c.Request().Header.Get(HeaderAdminEmail))
		if !marketplace.IsAdmin(email) {
			return apperr.Forbidden("Admin access only.")
		}
		c.Set(adminEmailKey, email)
		return next(c)
	}
}

// RequireUserEmail rejects requests without an x-user-email header.
func RequireUserEmail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := strings.TrimSpace(c.Request().Header.Get(HeaderUserEmail))
		if email == "" {
			return apperr.Unauthorized("User email required.")
		}
		c.Set(userEmailKey, email)
		return next(c)
	}
}

// AdminEmail returns the address AdminGuard accepted.
func AdminEmail(c echo.Context) string {
	s, _ := c.Get(adminEmailKey).(string)
	return s
}

// UserEmail returns the address RequireUserEmail accepted.
func UserEmail(c echo.Context) string {
	s, _ := c.Get(userEmailKey).(string)
	return s
}
