package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// LicenseRepository implements ports.LicenseRepository. Slot accounting is
// done with single-document conditional updates, so the capacity check and
// the increment are atomic.
type LicenseRepository struct {
	col *mongo.Collection
}

func NewLicenseRepository(db *mongo.Database) *LicenseRepository {
	return &LicenseRepository{col: db.Collection(collectionLicenseKeys)}
}

type licenseDoc struct {
	ID            string    `bson:"_id"`
	ApplicationID string    `bson:"application_id"`
	Key           string    `bson:"key"`
	MaxUsers      int       `bson:"max_users"`
	CurrentUsers  int       `bson:"current_users"`
	ValidityDays  int       `bson:"validity_days"`
	ExpiresAt     time.Time `bson:"expires_at"`
	Active        bool      `bson:"active"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d licenseDoc) toDomain() *domain.LicenseKey {
	return &domain.LicenseKey{
		ID:            d.ID,
		ApplicationID: d.ApplicationID,
		Key:           d.Key,
		MaxUsers:      d.MaxUsers,
		CurrentUsers:  d.CurrentUsers,
		ValidityDays:  d.ValidityDays,
		ExpiresAt:     d.ExpiresAt,
		Active:        d.Active,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *LicenseRepository) FindByKey(ctx context.Context, key string) (*domain.LicenseKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d licenseDoc
	if err := r.col.FindOne(ctx, bson.M{"key": key}).Decode(&d); err != nil {
		return nil, mapErr("find license key", err)
	}
	return d.toDomain(), nil
}

func (r *LicenseRepository) CreateMany(ctx context.Context, keys []*domain.LicenseKey) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, licenseDoc{
			ID:            k.ID,
			ApplicationID: k.ApplicationID,
			Key:           k.Key,
			MaxUsers:      k.MaxUsers,
			CurrentUsers:  k.CurrentUsers,
			ValidityDays:  k.ValidityDays,
			ExpiresAt:     k.ExpiresAt,
			Active:        k.Active,
			CreatedAt:     k.CreatedAt,
		})
	}
	_, err := r.col.InsertMany(ctx, docs)
	return mapErr("insert license keys", err)
}

// consumeFilter matches the key only while a slot is free.
func consumeFilter(id string) bson.M {
	return bson.M{
		"_id":    id,
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$current_users", "$max_users"}},
	}
}

// releaseFilter matches the key only while the counter is positive.
func releaseFilter(id string) bson.M {
	return bson.M{"_id": id, "current_users": bson.M{"$gt": 0}}
}

func (r *LicenseRepository) Consume(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, consumeFilter(id), bson.M{"$inc": bson.M{"current_users": 1}})
	if err != nil {
		return mapErr("consume license slot", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrLicenseFull
	}
	return nil
}

func (r *LicenseRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx, releaseFilter(id), bson.M{"$inc": bson.M{"current_users": -1}})
	return mapErr("release license slot", err)
}

func (r *LicenseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "application_id", Value: 1}}},
	})
	return err
}
