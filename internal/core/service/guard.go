package service

import (
	"context"
	"fmt"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

// GuardDecision is the outcome of DeviceGuard.Evaluate. Reason is nil when
// the login may proceed; NeedsBind asks the caller to commit the supplied
// HWID once the password has been verified.
type GuardDecision struct {
	Reason    error
	NeedsBind bool
}

// DeviceGuard enforces version equality and HWID locking in two phases.
// Evaluate never mutates state. Bind is the commit step and must only be
// called after password verification succeeds, so a wrong-password attempt
// from a new device never binds it. A mismatch against an already stored
// HWID is still rejected by Evaluate before the password check.
type DeviceGuard struct {
	users ports.AppUserRepository
}

func NewDeviceGuard(users ports.AppUserRepository) *DeviceGuard {
	return &DeviceGuard{users: users}
}

// Evaluate checks version first, then HWID.
func (g *DeviceGuard) Evaluate(app *domain.Application, user *domain.AppUser, version, hwid string) GuardDecision {
	if app.EnforcesVersion() && version != app.Version {
		return GuardDecision{Reason: domain.ErrVersionMismatch}
	}
	if !app.HwidLock {
		return GuardDecision{}
	}
	if user.Hwid == "" {
		return GuardDecision{NeedsBind: hwid != ""}
	}
	if user.Hwid != hwid {
		return GuardDecision{Reason: domain.ErrHwidMismatch}
	}
	return GuardDecision{}
}

// Bind stores hwid on a user that has none. A concurrent bind by another
// device surfaces as domain.ErrHwidMismatch.
func (g *DeviceGuard) Bind(ctx context.Context, user *domain.AppUser, hwid string) error {
	if err := g.users.BindHwid(ctx, user.ID, hwid); err != nil {
		if isConflict(err) {
			return domain.ErrHwidMismatch
		}
		return fmt.Errorf("bind hwid: %w", err)
	}
	user.Hwid = hwid
	return nil
}
