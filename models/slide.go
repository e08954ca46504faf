package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Slide is one homepage carousel entry.
type Slide struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	ImageURL  string             `json:"imageUrl" bson:"imageUrl"`
	LinkURL   string             `json:"linkUrl,omitempty" bson:"linkUrl,omitempty"`
	SortOrder int                `json:"sortOrder" bson:"sortOrder"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type SlideRequest struct {
	Title     string `json:"title" validate:"required"`
	ImageURL  string `json:"imageUrl" validate:"required,url"`
	LinkURL   string `json:"linkUrl,omitempty"`
	SortOrder int    `json:"sortOrder,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}
