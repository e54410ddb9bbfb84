package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

const (
	collectionApplications = "applications"
	collectionAppUsers     = "app_users"
	collectionAccounts     = "accounts"
	collectionLicenseKeys  = "license_keys"
	collectionBlacklist    = "blacklist"
	collectionActivityLogs = "activity_logs"
	collectionSessions     = "active_sessions"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

var (
	_ ports.ApplicationRepository = (*ApplicationRepository)(nil)
	_ ports.AppUserRepository     = (*AppUserRepository)(nil)
	_ ports.AccountRepository     = (*AccountRepository)(nil)
	_ ports.LicenseRepository     = (*LicenseRepository)(nil)
	_ ports.BlacklistRepository   = (*BlacklistRepository)(nil)
	_ ports.ActivityRepository    = (*ActivityRepository)(nil)
	_ ports.SessionRepository     = (*SessionRepository)(nil)
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates every index the repositories rely on. The unique
// indexes back the store's uniqueness guarantees, so this must run before
// the service accepts traffic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	repos := map[string]indexer{
		collectionApplications: NewApplicationRepository(db),
		collectionAppUsers:     NewAppUserRepository(db),
		collectionAccounts:     NewAccountRepository(db),
		collectionLicenseKeys:  NewLicenseRepository(db),
		collectionBlacklist:    NewBlacklistRepository(db),
		collectionActivityLogs: NewActivityRepository(db),
		collectionSessions:     NewSessionRepository(db),
	}
	for name, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mapErr translates driver errors into domain sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
