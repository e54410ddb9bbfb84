package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultline/authd/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID          string    `bson:"_id"`
	Email       string    `bson:"email"`
	Role        string    `bson:"role"`
	Permissions []string  `bson:"permissions,omitempty"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:          d.ID,
		Email:       d.Email,
		Role:        d.Role,
		Permissions: d.Permissions,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d accountDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr("find account", err)
	}
	return d.toDomain(), nil
}

// UpsertByEmail creates the account with role on first call. An existing
// account keeps its stored role.
func (r *AccountRepository) UpsertByEmail(ctx context.Context, email, role string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"email":      email,
			"role":       role,
			"active":     true,
			"created_at": now,
		},
		"$set": bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d accountDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&d); err != nil {
		return nil, mapErr("upsert account", err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
