package domain

import "time"

const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Account is a platform owner. Accounts are soft-deactivated, never deleted.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPlatformStaff reports whether the account may act on applications it does not own.
func (a *Account) IsPlatformStaff() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

// ValidRole reports whether r is a known account role.
func ValidRole(r string) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}
