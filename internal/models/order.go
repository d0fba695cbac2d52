package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks an order from creation to completion
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAssigned  OrderStatus = "assigned"
	OrderPickedUp  OrderStatus = "picked_up"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStore is a snapshot of the store at order time
type OrderStore struct {
	Name        string    `json:"name" bson:"name"`
	CNPJ        string    `json:"cnpj" bson:"cnpj"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     Address   `json:"address" bson:"address"`
}

// OrderCustomer is one delivery stop
type OrderCustomer struct {
	Name            string  `json:"name" bson:"name"`
	Phone           string  `json:"phone" bson:"phone"`
	CustomerAddress Address `json:"customerAddress" bson:"customerAddress"`
}

// OrderItem is one line of the order
type OrderItem struct {
	ProductID   string  `json:"productId,omitempty" bson:"productId,omitempty"`
	ProductName string  `json:"productName" bson:"productName"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	Price       float64 `json:"price" bson:"price"`
}

// OrderPayment holds the payment choice made at checkout
type OrderPayment struct {
	Method string  `json:"method" bson:"method"`
	Change float64 `json:"change,omitempty" bson:"change,omitempty"`
}

// OrderPreview is the cost estimate snapshot persisted with the order
type OrderPreview struct {
	Cost      float64                `json:"cost" bson:"cost"`
	Distance  float64                `json:"distance" bson:"distance"`
	PriceList map[string]interface{} `json:"priceList,omitempty" bson:"priceList,omitempty"`
}

// Order represents a delivery order (MongoDB)
type Order struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderNumber    string              `json:"orderNumber" bson:"orderNumber"`
	Store          OrderStore          `json:"store" bson:"store"`
	Customers      []OrderCustomer     `json:"customer" bson:"customer"`
	Items          []OrderItem         `json:"items" bson:"items"`
	Payment        OrderPayment        `json:"payment" bson:"payment"`
	Notes          string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Total          float64             `json:"total" bson:"total"`
	DriveBack      bool                `json:"driveBack" bson:"driveBack"`
	FindDriverAuto bool                `json:"findDriverAuto" bson:"findDriverAuto"`
	Status         OrderStatus         `json:"status" bson:"status"`
	MotoboyID      *primitive.ObjectID `json:"motoboyId,omitempty" bson:"motoboyId,omitempty"`
	Preview        OrderPreview        `json:"preview" bson:"preview"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}
