package domain

import "time"

// Activity event names.
const (
	EventUserRegister     = "user_register"
	EventRegisterFailed   = "register_failed"
	EventUserLogin        = "user_login"
	EventLoginFailed      = "login_failed"
	EventAccountDisabled  = "account_disabled"
	EventAccountPaused    = "account_paused"
	EventAccountExpired   = "account_expired"
	EventVersionMismatch  = "version_mismatch"
	EventHwidMismatch     = "hwid_mismatch"
	EventHwidBound        = "hwid_bound"
	EventUserLogout       = "user_logout"
	EventUserPaused       = "user_paused"
	EventUserUnpaused     = "user_unpaused"
	EventHwidReset        = "hwid_reset"
	EventUserDeleted      = "user_deleted"
	EventAPIKeyRotated    = "api_key_rotated"
	loginBlockedPrefix    = "login_blocked_"
	registerBlockedPrefix = "register_blocked_"
)

// LoginBlockedEvent returns the event name for a login blocked on attribute t.
func LoginBlockedEvent(t BlacklistType) string { return loginBlockedPrefix + string(t) }

// RegisterBlockedEvent returns the event name for a registration blocked on attribute t.
func RegisterBlockedEvent(t BlacklistType) string { return registerBlockedPrefix + string(t) }

// ActivityLog is one append-only audit record. Metadata is an opaque document
// and is only interpreted by the activity store.
type ActivityLog struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"application_id,omitempty"`
	AppUserID     string         `json:"app_user_id,omitempty"`
	Event         string         `json:"event"`
	IP            string         `json:"ip,omitempty"`
	Hwid          string         `json:"hwid,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Success       bool           `json:"success"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
