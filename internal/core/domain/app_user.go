package domain

import "time"

// AppUser is an end-user credential scoped to one application.
type AppUser struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	LicenseKeyID  string     `json:"license_key_id,omitempty"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	Email         string     `json:"email,omitempty"`
	Active        bool       `json:"active"`
	Paused        bool       `json:"paused"`
	Hwid          string     `json:"hwid,omitempty"`
	LastLoginIP   string     `json:"last_login_ip,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	LoginAttempts int        `json:"login_attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Expired reports whether the user has an expiry in the past.
func (u *AppUser) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && !u.ExpiresAt.After(now)
}
