package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address holds a display address plus its [longitude, latitude] pair
type Address struct {
	Text        string    `json:"address,omitempty" bson:"address,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// Store represents an establishment that creates orders (MongoDB)
type Store struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BusinessName string             `json:"businessName" bson:"businessName"`
	CNPJ         string             `json:"cnpj" bson:"cnpj"`
	FirebaseUID  string             `json:"firebaseUid" bson:"firebaseUid"`
	PushToken    string             `json:"pushToken,omitempty" bson:"pushToken,omitempty"`
	Address      Address            `json:"address" bson:"address"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateStoreRequest struct {
	BusinessName string    `json:"businessName" validate:"required,min=2,max=120"`
	CNPJ         string    `json:"cnpj" validate:"required"`
	FirebaseUID  string    `json:"firebaseUid" validate:"required"`
	AddressText  string    `json:"address"`
	Coordinates  []float64 `json:"coordinates" validate:"omitempty,len=2"`
}
