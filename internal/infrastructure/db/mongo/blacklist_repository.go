package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// BlacklistRepository implements ports.BlacklistRepository. Global rules are
// stored with an empty application_id.
type BlacklistRepository struct {
	col *mongo.Collection
}

func NewBlacklistRepository(db *mongo.Database) *BlacklistRepository {
	return &BlacklistRepository{col: db.Collection(collectionBlacklist)}
}

type blacklistDoc struct {
	ID            string    `bson:"_id"`
	ApplicationID string    `bson:"application_id"`
	Type          string    `bson:"type"`
	Value         string    `bson:"value"`
	Reason        string    `bson:"reason,omitempty"`
	Active        bool      `bson:"active"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d blacklistDoc) toDomain() *domain.BlacklistEntry {
	return &domain.BlacklistEntry{
		ID:            d.ID,
		ApplicationID: d.ApplicationID,
		Type:          domain.BlacklistType(d.Type),
		Value:         d.Value,
		Reason:        d.Reason,
		Active:        d.Active,
		CreatedAt:     d.CreatedAt,
	}
}

func activeMatchFilter(applicationID string, t domain.BlacklistType, value string) bson.M {
	return bson.M{
		"application_id": bson.M{"$in": bson.A{applicationID, ""}},
		"type":           string(t),
		"value":          value,
		"active":         true,
	}
}

func (r *BlacklistRepository) ActiveMatch(ctx context.Context, applicationID string, t domain.BlacklistType, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, activeMatchFilter(applicationID, t, value), options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr("match blacklist", err)
	}
	return n > 0, nil
}

func (r *BlacklistRepository) Create(ctx context.Context, entry *domain.BlacklistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, blacklistDoc{
		ID:            entry.ID,
		ApplicationID: entry.ApplicationID,
		Type:          string(entry.Type),
		Value:         entry.Value,
		Reason:        entry.Reason,
		Active:        entry.Active,
		CreatedAt:     entry.CreatedAt,
	})
	return mapErr("insert blacklist entry", err)
}

func (r *BlacklistRepository) Deactivate(ctx context.Context, applicationID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "application_id": applicationID, "active": true},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return mapErr("deactivate blacklist entry", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BlacklistRepository) List(ctx context.Context, applicationID string) ([]*domain.BlacklistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"application_id": applicationID, "active": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, mapErr("list blacklist", err)
	}
	var docs []blacklistDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode blacklist", err)
	}

	out := make([]*domain.BlacklistEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes allows at most one active rule per (application, type, value).
func (r *BlacklistRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "application_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "value", Value: 1},
		},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"active": true}),
	})
	return err
}
