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

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	GetPendingDeliveryRequests(ctx context.Context, motoboyID string) ([]models.Notification, error)
	GetByMotoboyID(ctx context.Context, motoboyID string) ([]models.Notification, error)
	GetCallByCallID(ctx context.Context, callID string) (*models.Notification, error)
	// UpdateStatusIfPending transitions the notification to status only when it
	// is still PENDING. Returns the updated record, or nil when no PENDING
	// record matched (missing or already terminal).
	UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.NotificationStatus) (*models.Notification, error)
	// RespondCallIfPending is the conditional accept/decline write for a
	// call-style notification, keyed by data.callId. Same nil-on-no-match
	// contract as UpdateStatusIfPending.
	RespondCallIfPending(ctx context.Context, callID string, status models.NotificationStatus) (*models.Notification, error)
	// MarkExpired reclassifies PENDING records whose deadline has passed and
	// returns how many were affected.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create inserts a new notification
func (r *MongoNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByID retrieves a notification by its id
func (r *MongoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}

	var notification models.Notification
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// GetPendingDeliveryRequests retrieves the PENDING delivery requests ringing a motoboy
func (r *MongoNotificationRepository) GetPendingDeliveryRequests(ctx context.Context, motoboyID string) ([]models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(motoboyID)
	if err != nil {
		return nil, fmt.Errorf("invalid motoboy ID format: %w", err)
	}

	filter := bson.M{
		"motoboyId": objID,
		"status":    models.StatusPending,
		"type":      models.TypeDeliveryRequest,
	}
	return r.find(ctx, filter)
}

// GetByMotoboyID retrieves every notification addressed to a motoboy
func (r *MongoNotificationRepository) GetByMotoboyID(ctx context.Context, motoboyID string) ([]models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(motoboyID)
	if err != nil {
		return nil, fmt.Errorf("invalid motoboy ID format: %w", err)
	}
	return r.find(ctx, bson.M{"motoboyId": objID})
}

// GetCallByCallID retrieves the call-style notification carrying callID
func (r *MongoNotificationRepository) GetCallByCallID(ctx context.Context, callID string) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{
		"data.callId": callID,
		"type":        models.TypeCallStyle,
	}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// UpdateStatusIfPending performs the conditional status transition. The
// PENDING filter makes the write a compare-and-set: concurrent callers race
// at the document level and at most one observes a match.
func (r *MongoNotificationRepository) UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.NotificationStatus) (*models.Notification, error) {
	filter := bson.M{"_id": id, "status": models.StatusPending}
	return r.findOneAndSetStatus(ctx, filter, status)
}

// RespondCallIfPending performs the conditional accept/decline write for a call
func (r *MongoNotificationRepository) RespondCallIfPending(ctx context.Context, callID string, status models.NotificationStatus) (*models.Notification, error) {
	filter := bson.M{
		"data.callId": callID,
		"type":        models.TypeCallStyle,
		"status":      models.StatusPending,
	}
	return r.findOneAndSetStatus(ctx, filter, status)
}

// MarkExpired sweeps PENDING records past their deadline into EXPIRED
func (r *MongoNotificationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.StatusPending,
		"expiresAt": bson.M{"$lte": now},
	}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"status": models.StatusExpired},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepository) find(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) findOneAndSetStatus(ctx context.Context, filter bson.M, status models.NotificationStatus) (*models.Notification, error) {
	update := bson.M{"$set": bson.M{"status": status}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notification models.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}
