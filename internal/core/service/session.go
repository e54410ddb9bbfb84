package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionTracker issues, refreshes and ends app-user sessions.
type SessionTracker struct {
	repo ports.SessionRepository
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger
}

func NewSessionTracker(repo ports.SessionRepository, ttl time.Duration, log zerolog.Logger) *SessionTracker {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionTracker{repo: repo, ttl: ttl, now: time.Now, log: log}
}

// Create stores a new session and returns its bearer token. Only the token
// digest is persisted.
func (t *SessionTracker) Create(ctx context.Context, applicationID, appUserID string, meta domain.SessionMeta) (string, error) {
	token, err := generateOpaqueToken(sessionTokenBytes)
	if err != nil {
		return "", err
	}

	now := t.now().UTC()
	expires := now.Add(t.ttl)
	s := &domain.ActiveSession{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		AppUserID:     appUserID,
		TokenHash:     HashToken(token),
		IP:            meta.IP,
		Hwid:          meta.Hwid,
		UserAgent:     meta.UserAgent,
		Location:      meta.Location,
		Active:        true,
		LastActivity:  now,
		CreatedAt:     now,
		ExpiresAt:     &expires,
	}
	if err := t.repo.Create(ctx, s); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Touch refreshes last activity on a live session. Unknown, ended and expired
// sessions return domain.ErrInvalidSession.
func (t *SessionTracker) Touch(ctx context.Context, token string) (*domain.ActiveSession, error) {
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	hash := HashToken(token)
	s, err := t.repo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	now := t.now().UTC()
	if !s.Live(now) {
		return nil, domain.ErrInvalidSession
	}
	if err := t.repo.Touch(ctx, hash, now); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	s.LastActivity = now
	return s, nil
}

// End deactivates the session for token and returns it. It returns nil when
// the session is unknown or was already ended.
func (t *SessionTracker) End(ctx context.Context, token string) (*domain.ActiveSession, error) {
	if token == "" {
		return nil, nil
	}
	hash := HashToken(token)
	s, err := t.repo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if !s.Active {
		return nil, nil
	}
	if err := t.repo.Deactivate(ctx, hash); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return s, nil
}

// EndAllForUser deactivates every session of an app user.
func (t *SessionTracker) EndAllForUser(ctx context.Context, appUserID string) error {
	if err := t.repo.DeactivateByUser(ctx, appUserID); err != nil {
		return fmt.Errorf("end user sessions: %w", err)
	}
	return nil
}

// Sweep deactivates sessions past their expiry.
func (t *SessionTracker) Sweep(ctx context.Context) (int64, error) {
	n, err := t.repo.DeactivateExpired(ctx, t.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if n > 0 {
		t.log.Info().Int64("count", n).Msg("expired sessions swept")
	}
	return n, nil
}
