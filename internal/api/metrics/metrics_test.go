package metrics

import (
	"errors"
	"testing"

	"github.com/vaultline/authd/internal/core/domain"
)

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":               nil,
		"blacklisted":      domain.Fail(domain.ErrBlacklisted, "access denied"),
		"license_full":     domain.ErrLicenseFull,
		"hwid_mismatch":    domain.Fail(domain.ErrHwidMismatch, "locked"),
		"invalid_session":  domain.Fail(domain.ErrInvalidSession, ""),
		"error":            errors.New("something else"),
		"user_not_found":   domain.Fail(domain.ErrUserNotFound, "invalid credentials"),
		"version_mismatch": domain.ErrVersionMismatch,
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}
