package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// authStatus maps auth failure reasons to HTTP codes. Unknown-user and
// wrong-password share a code, as they share a message.
var authStatus = []struct {
	reason error
	code   int
}{
	{domain.ErrInvalidAPIKey, http.StatusUnauthorized},
	{domain.ErrBlacklisted, http.StatusForbidden},
	{domain.ErrInvalidLicense, http.StatusBadRequest},
	{domain.ErrLicenseExpired, http.StatusForbidden},
	{domain.ErrLicenseFull, http.StatusForbidden},
	{domain.ErrDuplicateUser, http.StatusConflict},
	{domain.ErrUserNotFound, http.StatusUnauthorized},
	{domain.ErrBadPassword, http.StatusUnauthorized},
	{domain.ErrAccountDisabled, http.StatusForbidden},
	{domain.ErrAccountPaused, http.StatusForbidden},
	{domain.ErrAccountExpired, http.StatusForbidden},
	{domain.ErrVersionMismatch, http.StatusForbidden},
	{domain.ErrHwidMismatch, http.StatusForbidden},
	{domain.ErrInvalidSession, http.StatusUnauthorized},
	{domain.ErrRateLimited, http.StatusTooManyRequests},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders auth failures with the message chosen by the auth service.
//   - Maps store and console errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//
// Every response uses the envelope {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		for _, s := range authStatus {
			if errors.Is(authErr.Reason, s.reason) {
				return s.code, authErr.Message
			}
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
