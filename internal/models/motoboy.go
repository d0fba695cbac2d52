package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Motoboy represents a delivery courier (MongoDB)
type Motoboy struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Phone       string             `json:"phone" bson:"phone"`
	FirebaseUID string             `json:"firebaseUid" bson:"firebaseUid"`
	FCMToken    string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	PushToken   string             `json:"pushToken,omitempty" bson:"pushToken,omitempty"`
	IsAvailable bool               `json:"isAvailable" bson:"isAvailable"`
	Score       float64            `json:"score" bson:"score"`
	Coordinates []float64          `json:"coordinates,omitempty" bson:"coordinates,omitempty"` // [longitude, latitude]
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateMotoboyRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=80"`
	Phone       string    `json:"phone" validate:"required"`
	FirebaseUID string    `json:"firebaseUid" validate:"required"`
	FCMToken    string    `json:"fcmToken"`
	PushToken   string    `json:"pushToken"`
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
}

type UpdateMotoboyLocationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

type UpdateMotoboyTokensRequest struct {
	FCMToken  string `json:"fcmToken"`
	PushToken string `json:"pushToken"`
}

type UpdateMotoboyAvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}
