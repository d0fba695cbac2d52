package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/gringo-delivery/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MotoboyRepository defines the interface for motoboy data operations.
// Lookup methods return (nil, nil) when no document matches.
type MotoboyRepository interface {
	Create(ctx context.Context, motoboy *models.Motoboy) error
	GetByID(ctx context.Context, id string) (*models.Motoboy, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Motoboy, error)
	GetAvailable(ctx context.Context) ([]models.Motoboy, error)
	UpdateLocation(ctx context.Context, id string, coordinates []float64) error
	UpdateTokens(ctx context.Context, id string, fcmToken, pushToken string) error
	UpdateAvailability(ctx context.Context, id string, available bool) error
}

// MongoMotoboyRepository implements MotoboyRepository for MongoDB
type MongoMotoboyRepository struct {
	collection *mongo.Collection
}

// NewMongoMotoboyRepository creates a new MongoMotoboyRepository
func NewMongoMotoboyRepository(db *mongo.Database) *MongoMotoboyRepository {
	return &MongoMotoboyRepository{collection: db.Collection("motoboys")}
}

// Create inserts a new motoboy
func (r *MongoMotoboyRepository) Create(ctx context.Context, motoboy *models.Motoboy) error {
	motoboy.ID = primitive.NewObjectID()
	motoboy.CreatedAt = time.Now()
	motoboy.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, motoboy)
	return err
}

// GetByID retrieves a motoboy by ID
func (r *MongoMotoboyRepository) GetByID(ctx context.Context, id string) (*models.Motoboy, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid motoboy ID format: %w", err)
	}

	var motoboy models.Motoboy
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&motoboy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &motoboy, nil
}

// GetByFirebaseUID retrieves a motoboy by its Firebase identity
func (r *MongoMotoboyRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Motoboy, error) {
	var motoboy models.Motoboy
	err := r.collection.FindOne(ctx, bson.M{"firebaseUid": firebaseUID}).Decode(&motoboy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &motoboy, nil
}

// GetAvailable retrieves motoboys currently accepting deliveries, best score first
func (r *MongoMotoboyRepository) GetAvailable(ctx context.Context) ([]models.Motoboy, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isAvailable": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var motoboys []models.Motoboy
	if err = cursor.All(ctx, &motoboys); err != nil {
		return nil, err
	}
	return motoboys, nil
}

// UpdateLocation stores the motoboy's latest [longitude, latitude] position
func (r *MongoMotoboyRepository) UpdateLocation(ctx context.Context, id string, coordinates []float64) error {
	return r.updateFields(ctx, id, bson.M{"coordinates": coordinates})
}

// UpdateTokens stores the motoboy's push delivery tokens
func (r *MongoMotoboyRepository) UpdateTokens(ctx context.Context, id string, fcmToken, pushToken string) error {
	fields := bson.M{}
	if fcmToken != "" {
		fields["fcmToken"] = fcmToken
	}
	if pushToken != "" {
		fields["pushToken"] = pushToken
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updateFields(ctx, id, fields)
}

// UpdateAvailability flips whether the motoboy is accepting deliveries
func (r *MongoMotoboyRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	return r.updateFields(ctx, id, bson.M{"isAvailable": available})
}

func (r *MongoMotoboyRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid motoboy ID format: %w", err)
	}

	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("motoboy not found")
	}
	return nil
}
