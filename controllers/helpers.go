package controllers

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/voltvest/voltvest_backend/middleware"
)

// objectIDFromClaims converts the token's user id into an ObjectID.
func objectIDFromClaims(claims *middleware.JwtCustomClaims) (primitive.ObjectID, error) {
	if claims == nil {
		return primitive.NilObjectID, errors.New("missing claims")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
