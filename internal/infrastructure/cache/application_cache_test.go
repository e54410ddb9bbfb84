package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

type countingRepo struct {
	ports.ApplicationRepository
	apps    map[string]*domain.Application
	lookups int
}

func (r *countingRepo) FindByAPIKey(_ context.Context, key string) (*domain.Application, error) {
	r.lookups++
	for _, a := range r.apps {
		if a.APIKey == key {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *countingRepo) Update(_ context.Context, app *domain.Application) error {
	c := *app
	r.apps[app.ID] = &c
	return nil
}

func (r *countingRepo) RotateAPIKey(_ context.Context, id, newKey string) error {
	r.apps[id].APIKey = newKey
	return nil
}

func newCountingRepo() *countingRepo {
	return &countingRepo{apps: map[string]*domain.Application{
		"app-1": {ID: "app-1", APIKey: "ak_1", Name: "demo", Active: true},
	}}
}

func TestApplicationCache_HitsAfterFirstLookup(t *testing.T) {
	repo := newCountingRepo()
	c := NewApplicationCache(repo, time.Minute)

	for i := 0; i < 3; i++ {
		app, err := c.FindByAPIKey(context.Background(), "ak_1")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		app.Name = "mutated"
	}
	if repo.lookups != 1 {
		t.Errorf("expected 1 backing lookup, got %d", repo.lookups)
	}

	app, _ := c.FindByAPIKey(context.Background(), "ak_1")
	if app.Name != "demo" {
		t.Errorf("cached value was mutated by a caller")
	}
}

func TestApplicationCache_MissesAreNotCached(t *testing.T) {
	repo := newCountingRepo()
	c := NewApplicationCache(repo, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := c.FindByAPIKey(context.Background(), "ak_missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if repo.lookups != 2 {
		t.Errorf("expected 2 backing lookups, got %d", repo.lookups)
	}
}

func TestApplicationCache_RotateEvictsOldKey(t *testing.T) {
	repo := newCountingRepo()
	c := NewApplicationCache(repo, time.Minute)

	if _, err := c.FindByAPIKey(context.Background(), "ak_1"); err != nil {
		t.Fatal(err)
	}
	if err := c.RotateAPIKey(context.Background(), "app-1", "ak_2"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.FindByAPIKey(context.Background(), "ak_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old key still resolves: %v", err)
	}
	if _, err := c.FindByAPIKey(context.Background(), "ak_2"); err != nil {
		t.Errorf("new key does not resolve: %v", err)
	}
}

func TestApplicationCache_UpdateEvicts(t *testing.T) {
	repo := newCountingRepo()
	c := NewApplicationCache(repo, time.Minute)

	app, _ := c.FindByAPIKey(context.Background(), "ak_1")
	app.Active = false
	if err := c.Update(context.Background(), app); err != nil {
		t.Fatal(err)
	}

	got, _ := c.FindByAPIKey(context.Background(), "ak_1")
	if got.Active {
		t.Error("stale application served after update")
	}
}
