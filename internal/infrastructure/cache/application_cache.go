package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const (
	keyPrefix = "key:"
	idPrefix  = "id:"
)

// ApplicationCache decorates an ApplicationRepository with a short-lived
// in-process cache of API key lookups. Writes through the decorator evict the
// affected entry; writes from other processes become visible after the TTL.
type ApplicationCache struct {
	ports.ApplicationRepository
	c *gocache.Cache
}

var _ ports.ApplicationRepository = (*ApplicationCache)(nil)

func NewApplicationCache(next ports.ApplicationRepository, ttl time.Duration) *ApplicationCache {
	cleanup := 2 * ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &ApplicationCache{ApplicationRepository: next, c: gocache.New(ttl, cleanup)}
}

func (a *ApplicationCache) FindByAPIKey(ctx context.Context, key string) (*domain.Application, error) {
	if v, ok := a.c.Get(keyPrefix + key); ok {
		app := *v.(*domain.Application)
		return &app, nil
	}

	app, err := a.ApplicationRepository.FindByAPIKey(ctx, key)
	if err != nil {
		return nil, err
	}
	stored := *app
	a.c.SetDefault(keyPrefix+key, &stored)
	a.c.SetDefault(idPrefix+app.ID, key)
	return app, nil
}

func (a *ApplicationCache) Update(ctx context.Context, app *domain.Application) error {
	err := a.ApplicationRepository.Update(ctx, app)
	a.evict(app.ID)
	return err
}

func (a *ApplicationCache) RotateAPIKey(ctx context.Context, id, newKey string) error {
	err := a.ApplicationRepository.RotateAPIKey(ctx, id, newKey)
	a.evict(id)
	return err
}

func (a *ApplicationCache) evict(id string) {
	if v, ok := a.c.Get(idPrefix + id); ok {
		a.c.Delete(keyPrefix + v.(string))
	}
	a.c.Delete(idPrefix + id)
}
