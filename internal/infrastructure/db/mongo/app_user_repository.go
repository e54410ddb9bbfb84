package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// AppUserRepository implements ports.AppUserRepository.
type AppUserRepository struct {
	col *mongo.Collection
}

func NewAppUserRepository(db *mongo.Database) *AppUserRepository {
	return &AppUserRepository{col: db.Collection(collectionAppUsers)}
}

// Email and hwid are omitted when empty so the partial unique index on email
// and the "no hwid yet" bind filter can test for field existence.
type appUserDoc struct {
	ID            string     `bson:"_id"`
	ApplicationID string     `bson:"application_id"`
	LicenseKeyID  string     `bson:"license_key_id,omitempty"`
	Username      string     `bson:"username"`
	PasswordHash  string     `bson:"password_hash"`
	Email         string     `bson:"email,omitempty"`
	Active        bool       `bson:"active"`
	Paused        bool       `bson:"paused"`
	Hwid          string     `bson:"hwid,omitempty"`
	LastLoginIP   string     `bson:"last_login_ip,omitempty"`
	LastLoginAt   *time.Time `bson:"last_login_at,omitempty"`
	ExpiresAt     *time.Time `bson:"expires_at,omitempty"`
	LoginAttempts int        `bson:"login_attempts"`
	LastAttemptAt *time.Time `bson:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func toAppUserDoc(u *domain.AppUser) appUserDoc {
	return appUserDoc{
		ID:            u.ID,
		ApplicationID: u.ApplicationID,
		LicenseKeyID:  u.LicenseKeyID,
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		Email:         u.Email,
		Active:        u.Active,
		Paused:        u.Paused,
		Hwid:          u.Hwid,
		LastLoginIP:   u.LastLoginIP,
		LastLoginAt:   u.LastLoginAt,
		ExpiresAt:     u.ExpiresAt,
		LoginAttempts: u.LoginAttempts,
		LastAttemptAt: u.LastAttemptAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d appUserDoc) toDomain() *domain.AppUser {
	return &domain.AppUser{
		ID:            d.ID,
		ApplicationID: d.ApplicationID,
		LicenseKeyID:  d.LicenseKeyID,
		Username:      d.Username,
		PasswordHash:  d.PasswordHash,
		Email:         d.Email,
		Active:        d.Active,
		Paused:        d.Paused,
		Hwid:          d.Hwid,
		LastLoginIP:   d.LastLoginIP,
		LastLoginAt:   d.LastLoginAt,
		ExpiresAt:     d.ExpiresAt,
		LoginAttempts: d.LoginAttempts,
		LastAttemptAt: d.LastAttemptAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *AppUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.AppUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d appUserDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr("find app user", err)
	}
	return d.toDomain(), nil
}

func (r *AppUserRepository) FindByUsername(ctx context.Context, applicationID, username string) (*domain.AppUser, error) {
	return r.findOne(ctx, bson.M{"application_id": applicationID, "username": username})
}

func (r *AppUserRepository) FindByID(ctx context.Context, applicationID, id string) (*domain.AppUser, error) {
	return r.findOne(ctx, bson.M{"_id": id, "application_id": applicationID})
}

func (r *AppUserRepository) Exists(ctx context.Context, applicationID, username, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, existsFilter(applicationID, username, email), options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr("count app users", err)
	}
	return n > 0, nil
}

func existsFilter(applicationID, username, email string) bson.M {
	or := bson.A{bson.M{"username": username}}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	return bson.M{"application_id": applicationID, "$or": or}
}

func (r *AppUserRepository) Create(ctx context.Context, user *domain.AppUser) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toAppUserDoc(user))
	return mapErr("insert app user", err)
}

func (r *AppUserRepository) updateByID(ctx context.Context, op, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AppUserRepository) RecordFailedAttempt(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, "record failed attempt", id, bson.M{
		"$inc": bson.M{"login_attempts": 1},
		"$set": bson.M{"last_attempt_at": at, "updated_at": at},
	})
}

func (r *AppUserRepository) RecordLogin(ctx context.Context, id, ip string, at time.Time) error {
	return r.updateByID(ctx, "record login", id, bson.M{"$set": bson.M{
		"last_login_ip":  ip,
		"last_login_at":  at,
		"login_attempts": 0,
		"updated_at":     at,
	}})
}

// BindHwid is a conditional update on "hwid absent"; of two racing binds
// only one matches.
func (r *AppUserRepository) BindHwid(ctx context.Context, id, hwid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "hwid": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"hwid": hwid, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return mapErr("bind hwid", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("bind hwid", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *AppUserRepository) ResetHwid(ctx context.Context, id string) error {
	return r.updateByID(ctx, "reset hwid", id, bson.M{
		"$unset": bson.M{"hwid": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *AppUserRepository) SetPaused(ctx context.Context, id string, paused bool) error {
	return r.updateByID(ctx, "set paused", id, bson.M{"$set": bson.M{
		"paused":     paused,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *AppUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete app user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes makes username unique per application, and email unique per
// application where present.
func (r *AppUserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "application_id", Value: 1}, {Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "application_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "license_key_id", Value: 1}}},
	})
	return err
}
