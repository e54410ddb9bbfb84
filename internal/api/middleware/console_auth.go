package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
	"github.com/vaultline/authd/internal/core/service"
)

const (
	// ConsoleCookie carries the console token set by the dashboard.
	ConsoleCookie = "console_session"

	ContextAccountKey = "account"
	ContextRoleKey    = "role"
)

// ConsoleAuth validates the console token and injects the signed-in account.
// The token is read from the session cookie, then from a bearer header.
func ConsoleAuth(secret string, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := consoleToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing console session")
			}

			claims, err := service.ParseConsoleToken(secret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid console session")
			}

			acct, err := accounts.FindByID(c.Request().Context(), claims.AccountID)
			if errors.Is(err, domain.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid console session")
			}
			if err != nil {
				return err
			}
			if !acct.Active {
				return echo.NewHTTPError(http.StatusForbidden, "account is disabled")
			}

			// The stored role wins over the one in the token.
			c.Set(ContextAccountKey, acct)
			c.Set(ContextRoleKey, acct.Role)

			return next(c)
		}
	}
}

func consoleToken(c echo.Context) string {
	if cookie, err := c.Cookie(ConsoleCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
