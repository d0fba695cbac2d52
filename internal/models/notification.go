package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies what a notification is about
type NotificationType string

// NotificationStatus tracks the lifecycle of a notification
type NotificationStatus string

const (
	TypeDeliveryRequest NotificationType = "DELIVERY_REQUEST"
	TypeOrderReady      NotificationType = "ORDER_READY"
	TypeSystem          NotificationType = "SYSTEM"
	TypeSupportAlert    NotificationType = "SUPPORT_ALERT"
	TypeMotoboy         NotificationType = "MOTOBOY"
	TypeCallStyle       NotificationType = "CALL_STYLE"

	StatusPending  NotificationStatus = "PENDING"
	StatusRead     NotificationStatus = "READ"
	StatusAccepted NotificationStatus = "ACCEPTED"
	StatusDeclined NotificationStatus = "DECLINED"
	StatusExpired  NotificationStatus = "EXPIRED"
)

// IsTerminal reports whether the status admits no further transitions.
// PENDING is the only non-terminal status.
func (s NotificationStatus) IsTerminal() bool {
	return s != StatusPending
}

// Valid reports whether the status is one of the known lifecycle values.
func (s NotificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRead, StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// Notification represents a unit of communication to a motoboy, store or
// support member (MongoDB). Exactly one of MotoboyID, StoreID or FirebaseUID
// identifies the recipient; SUPPORT_ALERT records address support members by
// FirebaseUID only.
type Notification struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	MotoboyID   *primitive.ObjectID `json:"motoboyId,omitempty" bson:"motoboyId,omitempty"`
	StoreID     *primitive.ObjectID `json:"storeId,omitempty" bson:"storeId,omitempty"`
	FirebaseUID string              `json:"firebaseUid,omitempty" bson:"firebaseUid,omitempty"`
	Type        NotificationType    `json:"type" bson:"type"`
	Title       string              `json:"title" bson:"title"`
	Message     string              `json:"message" bson:"message"`
	Data        bson.M              `json:"data,omitempty" bson:"data,omitempty"`
	Status      NotificationStatus  `json:"status" bson:"status"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
}

// IsExpired reports whether the notification deadline has passed at the
// given instant. A nil ExpiresAt means the notification never expires.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// CallID returns the call identifier stored in the data bag, or "" when the
// notification is not call-style.
func (n *Notification) CallID() string {
	if n.Data == nil {
		return ""
	}
	if id, ok := n.Data["callId"].(string); ok {
		return id
	}
	return ""
}

// EffectiveStatus is the status a reader must act on: an unswept PENDING
// record past its deadline reads as EXPIRED.
func (n *Notification) EffectiveStatus(now time.Time) NotificationStatus {
	if n.Status == StatusPending && n.IsExpired(now) {
		return StatusExpired
	}
	return n.Status
}
