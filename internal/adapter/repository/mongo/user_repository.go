package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/user/leafmarket/internal/domain"
)

const usersCollection = "users"

// UserRepository implements domain.UserRepository on a MongoDB collection
// keyed by the identity's uid. Emails arrive pre-normalized to lower case
// from the auth service; equality here is exact.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a MongoDB-backed credential repository and
// ensures the unique index on email exists. The index is what makes
// duplicate rejection hold under concurrent signups.
func NewUserRepository(ctx context.Context, db *mongo.Database) (*UserRepository, error) {
	coll := db.Collection(usersCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create unique email index: %w", err)
	}

	return &UserRepository{coll: coll}, nil
}

func (r *UserRepository) Store(ctx context.Context, u *domain.User) error {
	// Fast path for the common case; the unique index catches the
	// race between two concurrent signups for the same email.
	if existing, err := r.FindByEmail(ctx, u.Email); err == nil && existing != nil {
		return domain.ErrDuplicate
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by uid: %w", err)
	}
	return &u, nil
}
