package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultline/authd/internal/core/domain"
)

func TestSessionTracker_Lifecycle(t *testing.T) {
	repo := newMemSessions()
	tracker := NewSessionTracker(repo, time.Hour, zerolog.Nop())

	token, err := tracker.Create(context.Background(), "app-1", "u1", domain.SessionMeta{IP: "10.0.0.1", Hwid: "A"})
	require.NoError(t, err)
	assert.Len(t, token, 43)

	s, err := tracker.Touch(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.AppUserID)
	assert.Equal(t, "A", s.Hwid)

	ended, err := tracker.End(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, ended)

	again, err := tracker.End(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, again)

	_, err = tracker.Touch(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = tracker.Touch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	gone, err := tracker.End(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSessionTracker_TokensAreUnique(t *testing.T) {
	tracker := NewSessionTracker(newMemSessions(), 0, zerolog.Nop())
	assert.Equal(t, defaultSessionTTL, tracker.ttl)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := tracker.Create(context.Background(), "app-1", "u1", domain.SessionMeta{})
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestSessionTracker_SweepAndEndAll(t *testing.T) {
	repo := newMemSessions()
	tracker := NewSessionTracker(repo, time.Minute, zerolog.Nop())

	for _, user := range []string{"u1", "u1", "u2"} {
		_, err := tracker.Create(context.Background(), "app-1", user, domain.SessionMeta{})
		require.NoError(t, err)
	}

	require.NoError(t, tracker.EndAllForUser(context.Background(), "u1"))
	assert.Equal(t, 0, repo.activeFor("u1"))
	assert.Equal(t, 1, repo.activeFor("u2"))

	n, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	tracker.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err = tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, repo.activeFor("u2"))
}
