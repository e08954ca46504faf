// models/car.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Car statuses
const (
	CarAvailable = "available"
	CarReserved  = "reserved"
	CarSold      = "sold"
)

// Car is one EV listing in the storefront inventory.
type Car struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Make        string             `json:"make" bson:"make"`
	Model       string             `json:"model" bson:"model"`
	Year        int                `json:"year" bson:"year"`
	Price       float64            `json:"price" bson:"price"`
	RangeKM     int                `json:"rangeKm" bson:"rangeKm"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	ImageURLs   []string           `json:"imageUrls,omitempty" bson:"imageUrls,omitempty"`
	Status      string             `json:"status" bson:"status"` // available, reserved, sold
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CarRequest struct {
	Make        string   `json:"make" validate:"required"`
	Model       string   `json:"model" validate:"required"`
	Year        int      `json:"year" validate:"required,gte=2008"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	RangeKM     int      `json:"rangeKm,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
	Status      string   `json:"status,omitempty"`
}
