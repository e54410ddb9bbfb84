package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

// BlacklistFilter checks identity attributes against application-scoped and
// global block rules. It only reads.
type BlacklistFilter struct {
	repo ports.BlacklistRepository
}

func NewBlacklistFilter(repo ports.BlacklistRepository) *BlacklistFilter {
	return &BlacklistFilter{repo: repo}
}

// NormalizeIdentity canonicalises a value before it is stored or matched.
func NormalizeIdentity(t domain.BlacklistType, value string) string {
	value = strings.TrimSpace(value)
	if t == domain.BlacklistEmail {
		return strings.ToLower(value)
	}
	return value
}

// IsBlocked reports whether an active entry for (t, value) exists for the
// application or globally. Empty values are never blocked.
func (f *BlacklistFilter) IsBlocked(ctx context.Context, applicationID string, t domain.BlacklistType, value string) (bool, error) {
	value = NormalizeIdentity(t, value)
	if value == "" {
		return false, nil
	}
	blocked, err := f.repo.ActiveMatch(ctx, applicationID, t, value)
	if err != nil {
		return false, fmt.Errorf("blacklist %s: %w", t, err)
	}
	return blocked, nil
}

// FirstMatch checks ids in order and returns the first blocked identity, or
// nil when none is blocked.
func (f *BlacklistFilter) FirstMatch(ctx context.Context, applicationID string, ids ...domain.Identity) (*domain.Identity, error) {
	for i := range ids {
		blocked, err := f.IsBlocked(ctx, applicationID, ids[i].Type, ids[i].Value)
		if err != nil {
			return nil, err
		}
		if blocked {
			return &ids[i], nil
		}
	}
	return nil, nil
}
