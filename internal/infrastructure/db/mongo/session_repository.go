package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// SessionRepository implements ports.SessionRepository.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

type sessionDoc struct {
	ID            string     `bson:"_id"`
	ApplicationID string     `bson:"application_id"`
	AppUserID     string     `bson:"app_user_id"`
	TokenHash     string     `bson:"token_hash"`
	IP            string     `bson:"ip,omitempty"`
	Hwid          string     `bson:"hwid,omitempty"`
	UserAgent     string     `bson:"user_agent,omitempty"`
	Location      string     `bson:"location,omitempty"`
	Active        bool       `bson:"active"`
	LastActivity  time.Time  `bson:"last_activity"`
	CreatedAt     time.Time  `bson:"created_at"`
	ExpiresAt     *time.Time `bson:"expires_at,omitempty"`
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.ActiveSession) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, sessionDoc{
		ID:            s.ID,
		ApplicationID: s.ApplicationID,
		AppUserID:     s.AppUserID,
		TokenHash:     s.TokenHash,
		IP:            s.IP,
		Hwid:          s.Hwid,
		UserAgent:     s.UserAgent,
		Location:      s.Location,
		Active:        s.Active,
		LastActivity:  s.LastActivity,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	})
	return mapErr("insert session", err)
}

func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.ActiveSession, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d sessionDoc
	if err := r.col.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&d); err != nil {
		return nil, mapErr("find session", err)
	}
	return &domain.ActiveSession{
		ID:            d.ID,
		ApplicationID: d.ApplicationID,
		AppUserID:     d.AppUserID,
		TokenHash:     d.TokenHash,
		IP:            d.IP,
		Hwid:          d.Hwid,
		UserAgent:     d.UserAgent,
		Location:      d.Location,
		Active:        d.Active,
		LastActivity:  d.LastActivity,
		CreatedAt:     d.CreatedAt,
		ExpiresAt:     d.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash, "active": true},
		bson.M{"$set": bson.M{"last_activity": at}},
	)
	return mapErr("touch session", err)
}

func (r *SessionRepository) Deactivate(ctx context.Context, tokenHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash, "active": true},
		bson.M{"$set": bson.M{"active": false}},
	)
	return mapErr("deactivate session", err)
}

func (r *SessionRepository) DeactivateByUser(ctx context.Context, appUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"app_user_id": appUserID, "active": true},
		bson.M{"$set": bson.M{"active": false}},
	)
	return mapErr("deactivate user sessions", err)
}

func expiredFilter(now time.Time) bson.M {
	return bson.M{"active": true, "expires_at": bson.M{"$lt": now}}
}

func (r *SessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx, expiredFilter(now), bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return 0, mapErr("deactivate expired sessions", err)
	}
	return res.ModifiedCount, nil
}

func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "app_user_id", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "expires_at", Value: 1}}},
	})
	return err
}
