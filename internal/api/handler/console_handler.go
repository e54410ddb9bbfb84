package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

// ConsoleHandler serves the owner console. Every route expects the console
// auth middleware to have stored the acting account in the context.
type ConsoleHandler struct {
	console ports.ConsoleService
}

func NewConsoleHandler(console ports.ConsoleService) *ConsoleHandler {
	return &ConsoleHandler{console: console}
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func ok(c echo.Context, code int, data any) error {
	return c.JSON(code, dataResponse{Success: true, Data: data})
}

type createApplicationRequest struct {
	Name     string          `json:"name" validate:"required,max=128"`
	Version  string          `json:"version,omitempty" validate:"max=64"`
	HwidLock bool            `json:"hwid_lock"`
	Messages domain.Messages `json:"messages"`
}

type updateApplicationRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,max=128"`
	Version  *string          `json:"version,omitempty" validate:"omitempty,max=64"`
	Active   *bool            `json:"active,omitempty"`
	HwidLock *bool            `json:"hwid_lock,omitempty"`
	Messages *domain.Messages `json:"messages,omitempty"`
}

type createLicensesRequest struct {
	Count        int `json:"count" validate:"required,min=1,max=500"`
	MaxUsers     int `json:"max_users" validate:"required,min=1"`
	ValidityDays int `json:"validity_days" validate:"required,min=1"`
}

type blacklistRequest struct {
	Type   string `json:"type" validate:"required,oneof=ip username email hwid"`
	Value  string `json:"value" validate:"required,max=256"`
	Reason string `json:"reason,omitempty" validate:"max=256"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// CreateApplication godoc
//
// @Summary      Create an application
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        body  body      createApplicationRequest  true  "Application settings"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  dataResponse
// @Failure      403   {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications [post]
func (h *ConsoleHandler) CreateApplication(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	app, err := h.console.CreateApplication(c.Request().Context(), actor, ports.CreateApplicationInput{
		Name:     req.Name,
		Version:  req.Version,
		HwidLock: req.HwidLock,
		Messages: req.Messages,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, app)
}

// ListApplications godoc
//
// @Summary      List applications visible to the signed-in account
// @Tags         console
// @Produce      json
// @Success      200  {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications [get]
func (h *ConsoleHandler) ListApplications(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	apps, err := h.console.ListApplications(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, apps)
}

// UpdateApplication godoc
//
// @Summary      Update application settings
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Application ID"
// @Param        body  body      updateApplicationRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse
// @Failure      404   {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id} [patch]
func (h *ConsoleHandler) UpdateApplication(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req updateApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	app, err := h.console.UpdateApplication(c.Request().Context(), actor, c.Param("id"), ports.UpdateApplicationInput{
		Name:     req.Name,
		Version:  req.Version,
		Active:   req.Active,
		HwidLock: req.HwidLock,
		Messages: req.Messages,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, app)
}

// RotateAPIKey godoc
//
// @Summary      Rotate an application's API key
// @Tags         console
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/rotate-key [post]
func (h *ConsoleHandler) RotateAPIKey(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	app, err := h.console.RotateAPIKey(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, app)
}

// CreateLicenseKeys godoc
//
// @Summary      Generate license keys
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Application ID"
// @Param        body  body      createLicensesRequest  true  "Batch settings"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/licenses [post]
func (h *ConsoleHandler) CreateLicenseKeys(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createLicensesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	keys, err := h.console.CreateLicenseKeys(c.Request().Context(), actor, c.Param("id"), ports.CreateLicensesInput{
		Count:        req.Count,
		MaxUsers:     req.MaxUsers,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, keys)
}

// PauseUser godoc
//
// @Summary      Pause an app user and end their sessions
// @Tags         console
// @Param        id      path  string  true  "Application ID"
// @Param        userID  path  string  true  "App user ID"
// @Success      200     {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/users/{userID}/pause [post]
func (h *ConsoleHandler) PauseUser(c echo.Context) error {
	return h.userAction(c, h.console.PauseUser)
}

// UnpauseUser godoc
//
// @Summary      Unpause an app user
// @Tags         console
// @Param        id      path  string  true  "Application ID"
// @Param        userID  path  string  true  "App user ID"
// @Success      200     {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/users/{userID}/unpause [post]
func (h *ConsoleHandler) UnpauseUser(c echo.Context) error {
	return h.userAction(c, h.console.UnpauseUser)
}

// ResetHwid godoc
//
// @Summary      Clear an app user's bound hardware id
// @Tags         console
// @Param        id      path  string  true  "Application ID"
// @Param        userID  path  string  true  "App user ID"
// @Success      200     {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/users/{userID}/reset-hwid [post]
func (h *ConsoleHandler) ResetHwid(c echo.Context) error {
	return h.userAction(c, h.console.ResetHwid)
}

// DeleteUser godoc
//
// @Summary      Delete an app user and release their license slot
// @Tags         console
// @Param        id      path  string  true  "Application ID"
// @Param        userID  path  string  true  "App user ID"
// @Success      200     {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/users/{userID} [delete]
func (h *ConsoleHandler) DeleteUser(c echo.Context) error {
	return h.userAction(c, h.console.DeleteUser)
}

type userActionFunc func(ctx context.Context, actor *domain.Account, appID, userID string) error

func (h *ConsoleHandler) userAction(c echo.Context, action userActionFunc) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	if err := action(c.Request().Context(), actor, c.Param("id"), c.Param("userID")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, nil)
}

// AddBlacklist godoc
//
// @Summary      Add an application block rule
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Application ID"
// @Param        body  body      blacklistRequest  true  "Rule"
// @Success      201   {object}  dataResponse
// @Failure      409   {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/blacklist [post]
func (h *ConsoleHandler) AddBlacklist(c echo.Context) error {
	return h.addBlacklist(c, c.Param("id"))
}

// AddGlobalBlacklist godoc
//
// @Summary      Add a platform-wide block rule
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        body  body      blacklistRequest  true  "Rule"
// @Success      201   {object}  dataResponse
// @Failure      403   {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/blacklist [post]
func (h *ConsoleHandler) AddGlobalBlacklist(c echo.Context) error {
	return h.addBlacklist(c, "")
}

func (h *ConsoleHandler) addBlacklist(c echo.Context, appID string) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req blacklistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	entry, err := h.console.AddBlacklist(c.Request().Context(), actor, ports.BlacklistInput{
		ApplicationID: appID,
		Type:          domain.BlacklistType(req.Type),
		Value:         req.Value,
		Reason:        req.Reason,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, entry)
}

// ListBlacklist godoc
//
// @Summary      List an application's active block rules
// @Tags         console
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/blacklist [get]
func (h *ConsoleHandler) ListBlacklist(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	entries, err := h.console.ListBlacklist(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, entries)
}

// RemoveBlacklist godoc
//
// @Summary      Deactivate an application block rule
// @Tags         console
// @Param        id       path  string  true  "Application ID"
// @Param        entryID  path  string  true  "Rule ID"
// @Success      200      {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/blacklist/{entryID} [delete]
func (h *ConsoleHandler) RemoveBlacklist(c echo.Context) error {
	return h.removeBlacklist(c, c.Param("id"))
}

// RemoveGlobalBlacklist godoc
//
// @Summary      Deactivate a platform-wide block rule
// @Tags         console
// @Param        entryID  path  string  true  "Rule ID"
// @Success      200      {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/blacklist/{entryID} [delete]
func (h *ConsoleHandler) RemoveGlobalBlacklist(c echo.Context) error {
	return h.removeBlacklist(c, "")
}

func (h *ConsoleHandler) removeBlacklist(c echo.Context, appID string) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	if err := h.console.RemoveBlacklist(c.Request().Context(), actor, appID, c.Param("entryID")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, nil)
}

// ListActivity godoc
//
// @Summary      List recent activity for an application
// @Tags         console
// @Produce      json
// @Param        id     path      string  true   "Application ID"
// @Param        limit  query     int     false  "Page size (default 50, max 500)"
// @Success      200    {object}  dataResponse
// @Security     ConsoleSession
// @Router       /console/v1/applications/{id}/activity [get]
func (h *ConsoleHandler) ListActivity(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	logs, err := h.console.ListActivity(c.Request().Context(), actor, c.Param("id"), limit)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, logs)
}
