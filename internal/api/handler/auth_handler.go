package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vaultline/authd/internal/api/metrics"
	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

// HeaderAPIKey identifies the tenant application on end-user calls.
const HeaderAPIKey = "X-API-Key"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	APIKey     string `json:"api_key"`
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,max=72"`
	Email      string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Hwid       string `json:"hwid,omitempty" validate:"max=256"`
	LicenseKey string `json:"license_key" validate:"required,max=64"`
}

type loginRequest struct {
	APIKey   string `json:"api_key"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Version  string `json:"version,omitempty" validate:"max=64"`
	Hwid     string `json:"hwid,omitempty" validate:"max=256"`
}

type sessionRequest struct {
	SessionToken string `json:"session_token"`
}

type authResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

func (r *authResponse) from(res *ports.AuthResult) *authResponse {
	r.Success = true
	r.Message = res.Message
	r.UserID = res.UserID
	r.SessionToken = res.SessionToken
	return r
}

// Register creates an app user under a license key.
//
// @Summary      Register an app user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header    string           false  "Application API key"
// @Param        body       body      registerRequest  true   "Registration details"
// @Success      201        {object}  authResponse
// @Failure      400        {object}  authResponse
// @Failure      401        {object}  authResponse
// @Failure      403        {object}  authResponse
// @Failure      409        {object}  authResponse
// @Failure      429        {object}  authResponse
// @Failure      503        {object}  authResponse
// @Router       /api/v1/register [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer observe("register", time.Now(), &err)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		APIKey:     apiKey(c, req.APIKey),
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		Hwid:       req.Hwid,
		LicenseKey: req.LicenseKey,
		IP:         c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, new(authResponse).from(res))
}

// Login authenticates an app user and opens a session.
//
// @Summary      Log in an app user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header    string        false  "Application API key"
// @Param        body       body      loginRequest  true   "Credentials"
// @Success      200        {object}  authResponse
// @Failure      400        {object}  authResponse
// @Failure      401        {object}  authResponse
// @Failure      403        {object}  authResponse
// @Failure      429        {object}  authResponse
// @Failure      503        {object}  authResponse
// @Router       /api/v1/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer observe("login", time.Now(), &err)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		APIKey:    apiKey(c, req.APIKey),
		Username:  req.Username,
		Password:  req.Password,
		Version:   req.Version,
		Hwid:      req.Hwid,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, new(authResponse).from(res))
}

// Verify checks a session token.
//
// @Summary      Verify a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Session token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  authResponse
// @Failure      503   {object}  authResponse
// @Router       /api/v1/verify [post]
func (h *AuthHandler) Verify(c echo.Context) (err error) {
	defer observe("verify", time.Now(), &err)

	res, err := h.authService.Verify(c.Request().Context(), sessionToken(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Message: res.Message, UserID: res.UserID})
}

// Logout ends a session. It always succeeds.
//
// @Summary      Log out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Session token"
// @Success      200   {object}  authResponse
// @Router       /api/v1/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	start := time.Now()
	res := h.authService.Logout(c.Request().Context(), sessionToken(c))
	observe("logout", start, new(error))
	return c.JSON(http.StatusOK, authResponse{Success: true, Message: res.Message})
}

// apiKey prefers the header over the body field.
func apiKey(c echo.Context, fromBody string) string {
	if k := strings.TrimSpace(c.Request().Header.Get(HeaderAPIKey)); k != "" {
		return k
	}
	return strings.TrimSpace(fromBody)
}

// sessionToken reads the token from the body, falling back to a bearer header.
// A malformed body yields an empty token, which every operation rejects.
func sessionToken(c echo.Context) string {
	var req sessionRequest
	_ = c.Bind(&req)
	if req.SessionToken != "" {
		return req.SessionToken
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func observe(operation string, start time.Time, err *error) {
	outcome := metrics.Outcome(*err)
	if outcome == "error" {
		if _, ok := (*err).(*echo.HTTPError); ok {
			outcome = metrics.Outcome(domain.ErrInvalidInput)
		}
	}
	metrics.AuthDecisionsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.AuthDecisionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
