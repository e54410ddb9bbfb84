package domain

import "time"

// LicenseKey grants registration capacity under an application.
type LicenseKey struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Key           string    `json:"key"`
	MaxUsers      int       `json:"max_users"`
	CurrentUsers  int       `json:"current_users"`
	ValidityDays  int       `json:"validity_days"`
	ExpiresAt     time.Time `json:"expires_at"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Expired reports whether the key is past its expiry at now.
func (l *LicenseKey) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// Full reports whether no registration slot remains.
func (l *LicenseKey) Full() bool {
	return l.CurrentUsers >= l.MaxUsers
}
