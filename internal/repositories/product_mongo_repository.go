package repositories

import (
	"context"
	"time"

	"vitrine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductsCollection is the MongoDB collection holding product documents.
const ProductsCollection = "products"

// MongoProductRepository stores products as documents in MongoDB.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over the products collection of db.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(ProductsCollection)}
}

// GetAll returns every product document ordered by creation time.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &StorageError{Op: "get all products", Err: err}
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, &StorageError{Op: "decode products", Err: err}
	}
	return products, nil
}

// Create inserts product, using a fresh ObjectID hex string as its identifier.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	product.Normalize()
	// Mongo keeps millisecond precision; truncate so the caller sees what was stored.
	product.Touch(time.Now().UTC().Truncate(time.Millisecond))
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return &StorageError{Op: "create product", Err: err}
	}
	return nil
}
