package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/user/leafmarket/internal/domain"
)

const productsCollection = "products"

// ProductRepository implements domain.ProductRepository on a MongoDB
// collection. Status and category predicates are part of the remote
// query, never applied client-side.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

// newestFirst orders results by creation time descending.
var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *ProductRepository) Store(ctx context.Context, p *domain.Product) (string, error) {
	doc := *p
	doc.ID = bson.NewObjectID().Hex()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return doc.ID, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProductRepository) FindActive(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, bson.M{"status": domain.StatusActive})
}

func (r *ProductRepository) FindActiveByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.find(ctx, bson.M{"status": domain.StatusActive, "category": category})
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Update merges the non-nil fields into the record and refreshes
// updatedAt. The id is not checked for existence first; a write against
// a missing id simply matches nothing.
func (r *ProductRepository) Update(ctx context.Context, id string, fields domain.ProductUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Price != nil {
		set["price"] = *fields.Price
	}
	if fields.Category != nil {
		set["category"] = *fields.Category
	}
	if fields.Stock != nil {
		set["stock"] = *fields.Stock
	}
	if fields.ImageURL != nil {
		set["imageUrl"] = *fields.ImageURL
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
