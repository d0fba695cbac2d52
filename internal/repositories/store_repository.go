package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/gringo-delivery/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StoreRepository defines the interface for store data operations.
// Lookup methods return (nil, nil) when no document matches.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Store, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*models.Store, error)
}

// MongoStoreRepository implements StoreRepository for MongoDB
type MongoStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoStoreRepository creates a new MongoStoreRepository
func NewMongoStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{collection: db.Collection("stores")}
}

// Create inserts a new store
func (r *MongoStoreRepository) Create(ctx context.Context, store *models.Store) error {
	store.ID = primitive.NewObjectID()
	store.CreatedAt = time.Now()
	store.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, store)
	return err
}

// GetByID retrieves a store by ID
func (r *MongoStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid store ID format: %w", err)
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetByFirebaseUID retrieves a store by its Firebase identity
func (r *MongoStoreRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Store, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": firebaseUID})
}

// GetByCNPJ retrieves a store by its CNPJ
func (r *MongoStoreRepository) GetByCNPJ(ctx context.Context, cnpj string) (*models.Store, error) {
	return r.findOne(ctx, bson.M{"cnpj": cnpj})
}

func (r *MongoStoreRepository) findOne(ctx context.Context, filter bson.M) (*models.Store, error) {
	var store models.Store
	err := r.collection.FindOne(ctx, filter).Decode(&store)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}
