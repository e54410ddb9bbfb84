package domain

import "errors"

// Failure reasons surfaced by the auth decision engine. Every failure path of
// Register/Login/Verify/Logout resolves to one of these.
var (
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrBlacklisted        = errors.New("blacklisted")
	ErrInvalidLicense     = errors.New("invalid license")
	ErrLicenseExpired     = errors.New("license expired")
	ErrLicenseFull        = errors.New("license full")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountPaused      = errors.New("account paused")
	ErrAccountExpired     = errors.New("account expired")
	ErrVersionMismatch    = errors.New("version mismatch")
	ErrHwidMismatch       = errors.New("hwid mismatch")
	ErrBadPassword        = errors.New("bad password")
	ErrInvalidSession     = errors.New("invalid session")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidInput       = errors.New("invalid input")
)

// Store-level sentinels returned by repositories.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("access forbidden")
)

// AuthError is the typed result of a failed auth operation. Reason is one of
// the sentinels above; Message is the text shown to the caller.
type AuthError struct {
	Reason  error
	Message string
}

func (e *AuthError) Error() string { return e.Reason.Error() + ": " + e.Message }

func (e *AuthError) Unwrap() error { return e.Reason }

// Fail builds an AuthError.
func Fail(reason error, message string) *AuthError {
	return &AuthError{Reason: reason, Message: message}
}

// Fixed platform text for failures that are not tenant-customizable.
const (
	MsgInvalidAPIKey      = "invalid application key"
	MsgBlacklisted        = "access denied"
	MsgInvalidLicense     = "invalid license key"
	MsgLicenseExpired     = "license key has expired"
	MsgLicenseFull        = "license key has reached its user limit"
	MsgDuplicateUser      = "username or email already taken"
	MsgInvalidSession     = "invalid or expired session"
	MsgServiceUnavailable = "service temporarily unavailable"
	MsgRateLimited        = "too many requests"
	MsgInvalidInput       = "invalid request"
	MsgRegistered         = "registration successful"
	MsgLoggedOut          = "logged out"
	MsgSessionValid       = "session valid"
)
