package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// ActivityRepository implements ports.ActivityRepository. Records are
// append-only.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivityLogs)}
}

type activityDoc struct {
	ID            string         `bson:"_id"`
	ApplicationID string         `bson:"application_id"`
	AppUserID     string         `bson:"app_user_id,omitempty"`
	Event         string         `bson:"event"`
	IP            string         `bson:"ip,omitempty"`
	Hwid          string         `bson:"hwid,omitempty"`
	UserAgent     string         `bson:"user_agent,omitempty"`
	Metadata      map[string]any `bson:"metadata,omitempty"`
	Success       bool           `bson:"success"`
	ErrorMessage  string         `bson:"error_message,omitempty"`
	CreatedAt     time.Time      `bson:"created_at"`
}

func (r *ActivityRepository) Insert(ctx context.Context, e *domain.ActivityLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, activityDoc{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		AppUserID:     e.AppUserID,
		Event:         e.Event,
		IP:            e.IP,
		Hwid:          e.Hwid,
		UserAgent:     e.UserAgent,
		Metadata:      e.Metadata,
		Success:       e.Success,
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt.UTC(),
	})
	return mapErr("insert activity", err)
}

// ListByApplication returns the newest records first.
func (r *ActivityRepository) ListByApplication(ctx context.Context, applicationID string, limit int) ([]*domain.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"application_id": applicationID}, opts)
	if err != nil {
		return nil, mapErr("list activity", err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode activity", err)
	}

	out := make([]*domain.ActivityLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.ActivityLog{
			ID:            d.ID,
			ApplicationID: d.ApplicationID,
			AppUserID:     d.AppUserID,
			Event:         d.Event,
			IP:            d.IP,
			Hwid:          d.Hwid,
			UserAgent:     d.UserAgent,
			Metadata:      d.Metadata,
			Success:       d.Success,
			ErrorMessage:  d.ErrorMessage,
			CreatedAt:     d.CreatedAt,
		})
	}
	return out, nil
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "application_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "app_user_id", Value: 1}}},
	})
	return err
}
