// Package metrics defines the custom Prometheus metrics of authd. Metrics are
// registered with the default registry on package init via promauto.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vaultline/authd/internal/core/domain"
)

const namespace = "authd"

// ── Auth decisions ────────────────────────────────────────────────────────────

// AuthDecisionsTotal counts auth decisions.
// Labels:
//   - operation: register, login, verify, logout
//   - outcome: "ok" or a failure reason (see Outcome)
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of auth decisions, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// AuthDecisionDuration measures end-to-end decision latency, bcrypt included.
var AuthDecisionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_decision_duration_seconds",
		Help:      "Duration of auth decisions.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Background work ───────────────────────────────────────────────────────────

// SessionsSweptTotal counts sessions deactivated by the expiry sweeper.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions deactivated by the sweeper.",
	},
)

// ActivityDroppedTotal counts activity records discarded because the
// dispatcher queue was full.
var ActivityDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity records dropped on a full queue.",
	},
	[]string{"event"},
)

// ── Rate limiting ─────────────────────────────────────────────────────────────

// RateLimitRejectedTotal counts requests rejected by the per-IP limiter.
var RateLimitRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejected_total",
		Help:      "Total number of requests rejected by the rate limiter, by route.",
	},
	[]string{"route"},
)

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrInvalidAPIKey, "invalid_api_key"},
	{domain.ErrBlacklisted, "blacklisted"},
	{domain.ErrInvalidLicense, "invalid_license"},
	{domain.ErrLicenseExpired, "license_expired"},
	{domain.ErrLicenseFull, "license_full"},
	{domain.ErrDuplicateUser, "duplicate_user"},
	{domain.ErrUserNotFound, "user_not_found"},
	{domain.ErrAccountDisabled, "account_disabled"},
	{domain.ErrAccountPaused, "account_paused"},
	{domain.ErrAccountExpired, "account_expired"},
	{domain.ErrVersionMismatch, "version_mismatch"},
	{domain.ErrHwidMismatch, "hwid_mismatch"},
	{domain.ErrBadPassword, "bad_password"},
	{domain.ErrInvalidSession, "invalid_session"},
	{domain.ErrServiceUnavailable, "service_unavailable"},
	{domain.ErrInvalidInput, "invalid_input"},
}

// Outcome maps an auth error to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
