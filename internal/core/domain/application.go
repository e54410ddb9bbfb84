package domain

import "time"

// Messages holds the tenant-customizable text returned to end users.
type Messages struct {
	LoginSuccess    string `json:"login_success" bson:"login_success"`
	LoginFailed     string `json:"login_failed" bson:"login_failed"`
	AccountDisabled string `json:"account_disabled" bson:"account_disabled"`
	AccountExpired  string `json:"account_expired" bson:"account_expired"`
	VersionMismatch string `json:"version_mismatch" bson:"version_mismatch"`
	HwidMismatch    string `json:"hwid_mismatch" bson:"hwid_mismatch"`
	AccountPaused   string `json:"account_paused" bson:"account_paused"`
}

// DefaultMessages are used for any message a tenant leaves blank.
var DefaultMessages = Messages{
	LoginSuccess:    "login successful",
	LoginFailed:     "invalid credentials",
	AccountDisabled: "account is disabled",
	AccountExpired:  "account has expired",
	VersionMismatch: "please update to the latest version",
	HwidMismatch:    "this account is locked to another device",
	AccountPaused:   "account is paused",
}

// WithDefaults returns m with every blank field replaced by its default.
func (m Messages) WithDefaults() Messages {
	fill := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Messages{
		LoginSuccess:    fill(m.LoginSuccess, DefaultMessages.LoginSuccess),
		LoginFailed:     fill(m.LoginFailed, DefaultMessages.LoginFailed),
		AccountDisabled: fill(m.AccountDisabled, DefaultMessages.AccountDisabled),
		AccountExpired:  fill(m.AccountExpired, DefaultMessages.AccountExpired),
		VersionMismatch: fill(m.VersionMismatch, DefaultMessages.VersionMismatch),
		HwidMismatch:    fill(m.HwidMismatch, DefaultMessages.HwidMismatch),
		AccountPaused:   fill(m.AccountPaused, DefaultMessages.AccountPaused),
	}
}

// Application is a tenant integration, identified externally by its API key.
type Application struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"`
	Version   string    `json:"version"`
	Active    bool      `json:"active"`
	HwidLock  bool      `json:"hwid_lock"`
	Messages  Messages  `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnforcesVersion reports whether logins must present the configured version.
func (a *Application) EnforcesVersion() bool {
	return a.Version != ""
}
