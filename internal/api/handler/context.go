package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vaultline/authd/internal/api/middleware"
	"github.com/vaultline/authd/internal/core/domain"
)

// ContextAccountKey is where the console auth middleware stores the signed-in account.
const ContextAccountKey = middleware.ContextAccountKey

// ctxAccount returns the account injected by the console auth middleware.
// A missing account means the route was mounted without the middleware.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	acct, _ := c.Get(ContextAccountKey).(*domain.Account)
	if acct == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing console session")
	}
	return acct, nil
}
