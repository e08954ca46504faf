package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one admin mutation.
type AuditLog struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID   primitive.ObjectID `json:"actorId" bson:"actorId"`
	Action    string             `json:"action" bson:"action"`
	TargetID  string             `json:"targetId,omitempty" bson:"targetId,omitempty"`
	Detail    string             `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
