package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupportTeamMember represents a member of the support dashboard team (MongoDB)
type SupportTeamMember struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	FirebaseUID string             `json:"firebaseUid" bson:"firebaseUid"`
	Active      bool               `json:"active" bson:"active"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type CreateSupportMemberRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=80"`
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	Active      *bool  `json:"active"`
}
