package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	dbredis "github.com/vaultline/authd/internal/infrastructure/db/redis"
)

// Limiter counts hits per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (dbredis.RateResult, error)
}

// RateLimit throttles requests per client IP and route. A limiter error lets
// the request through.
func RateLimit(limiter Limiter, route string, log zerolog.Logger, onReject func(route string)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := limiter.Allow(c.Request().Context(), route+":"+c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("route", route).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.Allowed {
				return next(c)
			}

			if onReject != nil {
				onReject(route)
			}
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"success": false,
				"message": domain.MsgRateLimited,
			})
		}
	}
}
