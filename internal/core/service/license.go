package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

// LicenseLedger gates registrations on license-key capacity and expiry.
type LicenseLedger struct {
	repo ports.LicenseRepository
	now  func() time.Time
}

func NewLicenseLedger(repo ports.LicenseRepository) *LicenseLedger {
	return &LicenseLedger{repo: repo, now: time.Now}
}

// Validate returns the key if it is active, owned by applicationID, unexpired
// and not full. Failures are domain.ErrInvalidLicense, domain.ErrLicenseExpired
// or domain.ErrLicenseFull; anything else is a store error.
func (l *LicenseLedger) Validate(ctx context.Context, key, applicationID string) (*domain.LicenseKey, error) {
	if key == "" {
		return nil, domain.ErrInvalidLicense
	}
	lic, err := l.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidLicense
		}
		return nil, fmt.Errorf("validate license: %w", err)
	}
	if !lic.Active || lic.ApplicationID != applicationID {
		return nil, domain.ErrInvalidLicense
	}
	if lic.Expired(l.now()) {
		return nil, domain.ErrLicenseExpired
	}
	if lic.Full() {
		return nil, domain.ErrLicenseFull
	}
	return lic, nil
}

// Consume takes one registration slot. The bound check happens inside the
// store's conditional update, so concurrent callers cannot over-allocate.
func (l *LicenseLedger) Consume(ctx context.Context, licenseID string) error {
	if err := l.repo.Consume(ctx, licenseID); err != nil {
		if errors.Is(err, domain.ErrLicenseFull) {
			return domain.ErrLicenseFull
		}
		return fmt.Errorf("consume license: %w", err)
	}
	return nil
}

// Release returns one slot, flooring the counter at zero.
func (l *LicenseLedger) Release(ctx context.Context, licenseID string) error {
	if licenseID == "" {
		return nil
	}
	if err := l.repo.Release(ctx, licenseID); err != nil {
		return fmt.Errorf("release license: %w", err)
	}
	return nil
}
