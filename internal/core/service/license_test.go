package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultline/authd/internal/core/domain"
)

func TestLicenseLedger_Validate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	base := domain.LicenseKey{
		ID: "lic-1", ApplicationID: "app-1", Key: "K", MaxUsers: 2, Active: true,
		ExpiresAt: now.Add(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(*domain.LicenseKey)
		want   error
	}{
		{name: "valid", mutate: func(*domain.LicenseKey) {}},
		{name: "inactive", mutate: func(l *domain.LicenseKey) { l.Active = false }, want: domain.ErrInvalidLicense},
		{name: "wrong app", mutate: func(l *domain.LicenseKey) { l.ApplicationID = "app-2" }, want: domain.ErrInvalidLicense},
		{name: "expired at boundary", mutate: func(l *domain.LicenseKey) { l.ExpiresAt = now }, want: domain.ErrLicenseExpired},
		{name: "full", mutate: func(l *domain.LicenseKey) { l.CurrentUsers = 2 }, want: domain.ErrLicenseFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lic := base
			tt.mutate(&lic)
			ledger := NewLicenseLedger(newMemLicenses(&lic))
			ledger.now = func() time.Time { return now }

			got, err := ledger.Validate(context.Background(), "K", "app-1")
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, "lic-1", got.ID)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLicenseLedger_ValidateStoreError(t *testing.T) {
	repo := newMemLicenses()
	repo.err = errors.New("socket closed")
	ledger := NewLicenseLedger(repo)

	_, err := ledger.Validate(context.Background(), "K", "app-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidLicense)
}

func TestLicenseLedger_ConsumeNeverOverAllocates(t *testing.T) {
	lic := &domain.LicenseKey{ID: "lic-1", MaxUsers: 5, Active: true}
	repo := newMemLicenses(lic)
	ledger := NewLicenseLedger(repo)

	var (
		wg      sync.WaitGroup
		granted atomic.Int32
		full    atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Consume(context.Background(), "lic-1")
			switch {
			case err == nil:
				granted.Add(1)
			case errors.Is(err, domain.ErrLicenseFull):
				full.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted.Load())
	assert.Equal(t, int32(45), full.Load())
	assert.Equal(t, 5, repo.current("lic-1"))
}

func TestLicenseLedger_ReleaseFloorsAtZero(t *testing.T) {
	repo := newMemLicenses(&domain.LicenseKey{ID: "lic-1", MaxUsers: 1, CurrentUsers: 1, Active: true})
	ledger := NewLicenseLedger(repo)

	require.NoError(t, ledger.Release(context.Background(), "lic-1"))
	require.NoError(t, ledger.Release(context.Background(), "lic-1"))
	require.NoError(t, ledger.Release(context.Background(), ""))
	assert.Equal(t, 0, repo.current("lic-1"))
}
