package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// ApplicationRepository implements ports.ApplicationRepository.
type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(collectionApplications)}
}

type applicationDoc struct {
	ID        string          `bson:"_id"`
	OwnerID   string          `bson:"owner_id"`
	Name      string          `bson:"name"`
	APIKey    string          `bson:"api_key"`
	Version   string          `bson:"version"`
	Active    bool            `bson:"active"`
	HwidLock  bool            `bson:"hwid_lock"`
	Messages  domain.Messages `bson:"messages"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func toApplicationDoc(a *domain.Application) applicationDoc {
	return applicationDoc{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		APIKey:    a.APIKey,
		Version:   a.Version,
		Active:    a.Active,
		HwidLock:  a.HwidLock,
		Messages:  a.Messages,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d applicationDoc) toDomain() *domain.Application {
	return &domain.Application{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		APIKey:    d.APIKey,
		Version:   d.Version,
		Active:    d.Active,
		HwidLock:  d.HwidLock,
		Messages:  d.Messages,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *ApplicationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d applicationDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr("find application", err)
	}
	return d.toDomain(), nil
}

func (r *ApplicationRepository) FindByAPIKey(ctx context.Context, key string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"api_key": key})
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, mapErr("list applications", err)
	}
	var docs []applicationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode applications", err)
	}

	out := make([]*domain.Application, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toApplicationDoc(app))
	return mapErr("insert application", err)
}

func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": app.ID}, bson.M{"$set": bson.M{
		"name":       app.Name,
		"version":    app.Version,
		"active":     app.Active,
		"hwid_lock":  app.HwidLock,
		"messages":   app.Messages,
		"updated_at": app.UpdatedAt,
	}})
	if err != nil {
		return mapErr("update application", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) RotateAPIKey(ctx context.Context, id, newKey string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"api_key":    newKey,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return mapErr("rotate api key", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique api_key index and the owner lookup index.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "api_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	return err
}
