package domain

import "time"

// ActiveSession is a live authenticated app-user session. TokenHash is the
// SHA-256 digest of the bearer token; the token itself is never stored.
type ActiveSession struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	AppUserID     string     `json:"app_user_id"`
	TokenHash     string     `json:"-"`
	IP            string     `json:"ip,omitempty"`
	Hwid          string     `json:"hwid,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	Location      string     `json:"location,omitempty"`
	Active        bool       `json:"active"`
	LastActivity  time.Time  `json:"last_activity"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Live reports whether the session is active and not past expiry at now.
func (s *ActiveSession) Live(now time.Time) bool {
	if !s.Active {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// SessionMeta is the request context captured when a session is created.
type SessionMeta struct {
	IP        string
	Hwid      string
	UserAgent string
	Location  string
}
