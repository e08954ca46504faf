package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session stores an issued refresh token so it can be revoked on logout.
type Session struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	RefreshToken string             `json:"-" bson:"refreshToken"`
	UserAgent    string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	ExpiresAt    time.Time          `json:"expiresAt" bson:"expiresAt"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
