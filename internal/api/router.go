package api

import (
	"net"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vaultline/authd/docs"
	"github.com/vaultline/authd/internal/api/handler"
	"github.com/vaultline/authd/internal/api/metrics"
	"github.com/vaultline/authd/internal/api/middleware"
	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
	"github.com/vaultline/authd/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Log           zerolog.Logger
	Auth          ports.AuthService
	Console       ports.ConsoleService
	Accounts      ports.AccountRepository
	ConsoleSecret string
	// Limiter throttles the public auth routes. Nil disables rate limiting.
	Limiter middleware.Limiter
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handlers.Check
	// TrustedProxies are the ranges whose X-Forwarded-For is honoured. When
	// empty the TCP peer address is the client IP.
	TrustedProxies []*net.IPNet
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "authd",
		Registerer: deps.Registerer,
	}))

	// --- Operational routes ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- End-user auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	limited := func(route string) []echo.MiddlewareFunc {
		if deps.Limiter == nil {
			return nil
		}
		onReject := func(route string) { metrics.RateLimitRejectedTotal.WithLabelValues(route).Inc() }
		return []echo.MiddlewareFunc{middleware.RateLimit(deps.Limiter, route, deps.Log, onReject)}
	}

	v1 := e.Group("/api/v1")
	v1.POST("/register", authHandler.Register, limited("register")...)
	v1.POST("/login", authHandler.Login, limited("login")...)
	v1.POST("/verify", authHandler.Verify, limited("verify")...)
	v1.POST("/logout", authHandler.Logout)

	// --- Owner console ---
	consoleHandler := handler.NewConsoleHandler(deps.Console)
	console := e.Group("/console/v1", middleware.ConsoleAuth(deps.ConsoleSecret, deps.Accounts))

	console.GET("/applications", consoleHandler.ListApplications)
	console.POST("/applications", consoleHandler.CreateApplication)
	console.PATCH("/applications/:id", consoleHandler.UpdateApplication)
	console.POST("/applications/:id/rotate-key", consoleHandler.RotateAPIKey)
	console.POST("/applications/:id/licenses", consoleHandler.CreateLicenseKeys)

	console.POST("/applications/:id/users/:userID/pause", consoleHandler.PauseUser)
	console.POST("/applications/:id/users/:userID/unpause", consoleHandler.UnpauseUser)
	console.POST("/applications/:id/users/:userID/reset-hwid", consoleHandler.ResetHwid)
	console.DELETE("/applications/:id/users/:userID", consoleHandler.DeleteUser)

	console.GET("/applications/:id/blacklist", consoleHandler.ListBlacklist)
	console.POST("/applications/:id/blacklist", consoleHandler.AddBlacklist)
	console.DELETE("/applications/:id/blacklist/:entryID", consoleHandler.RemoveBlacklist)

	console.GET("/applications/:id/activity", consoleHandler.ListActivity)

	staff := console.Group("/blacklist", middleware.RBAC(domain.RoleOwner, domain.RoleAdmin))
	staff.POST("", consoleHandler.AddGlobalBlacklist)
	staff.DELETE("/:entryID", consoleHandler.RemoveGlobalBlacklist)

	return e
}

// ipExtractor resolves the client IP seen by the blacklist and the rate
// limiter. Forwarding headers are only read from the listed proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		HandleError:  true,
		LogLatency:   true,
		LogMethod:    true,
		LogRoutePath: true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogStatus:    true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
