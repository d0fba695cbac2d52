package repositories

import (
	"context"
	"time"

	"github.com/gringo-delivery/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SupportTeamRepository defines the interface for support team data operations
type SupportTeamRepository interface {
	Create(ctx context.Context, member *models.SupportTeamMember) error
	GetActive(ctx context.Context) ([]models.SupportTeamMember, error)
	GetAll(ctx context.Context) ([]models.SupportTeamMember, error)
}

// MongoSupportTeamRepository implements SupportTeamRepository for MongoDB
type MongoSupportTeamRepository struct {
	collection *mongo.Collection
}

// NewMongoSupportTeamRepository creates a new MongoSupportTeamRepository
func NewMongoSupportTeamRepository(db *mongo.Database) *MongoSupportTeamRepository {
	return &MongoSupportTeamRepository{collection: db.Collection("supportteam")}
}

// Create inserts a new support team member
func (r *MongoSupportTeamRepository) Create(ctx context.Context, member *models.SupportTeamMember) error {
	member.ID = primitive.NewObjectID()
	member.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, member)
	return err
}

// GetActive retrieves the members currently receiving support alerts
func (r *MongoSupportTeamRepository) GetActive(ctx context.Context) ([]models.SupportTeamMember, error) {
	return r.find(ctx, bson.M{"active": true})
}

// GetAll retrieves every support team member
func (r *MongoSupportTeamRepository) GetAll(ctx context.Context) ([]models.SupportTeamMember, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoSupportTeamRepository) find(ctx context.Context, filter bson.M) ([]models.SupportTeamMember, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.SupportTeamMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}
