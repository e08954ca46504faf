// utils/audit.go
package utils

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltvest/voltvest_backend/models"
)

// WriteAuditLog appends one audit row for an admin mutation. Failures are
// logged and swallowed so audit problems never fail the triggering request.
func WriteAuditLog(ctx context.Context, db *mongo.Database, actorID primitive.ObjectID, action, targetID, detail string) {
	entry := models.AuditLog{
		ActorID:   actorID,
		Action:    action,
		TargetID:  targetID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	if _, err := db.Collection("auditLogs").InsertOne(ctx, entry); err != nil {
		log.Printf("Failed to write audit log (action=%s target=%s): %v", action, targetID, err)
	}
}
