// controllers/kyc_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/utils"
)

// KYCController handles identity verification: document upload by the user
// and review by an admin.
type KYCController struct {
	DB      *mongo.Database
	Storage *services.StorageService
	Mailer  *services.Mailer
}

func NewKYCController(db *mongo.Database, storage *services.StorageService, mailer *services.Mailer) *KYCController {
	return &KYCController{DB: db, Storage: storage, Mailer: mailer}
}

// UploadDocument accepts a multipart document image, normalizes it, stores it
// and moves the user's KYC level to PENDING.
func (kc *KYCController) UploadDocument(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := objectIDFromClaims(claims)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	docType := c.FormValue("type")
	if !utils.ValidKYCDocType(docType) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Document type must be one of id_front, id_back, selfie, proof_of_address",
		})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Document file is required",
		})
	}
	if !utils.IsValidImageFile(fileHeader) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Only JPG, PNG and WebP images are accepted",
		})
	}
	if fileHeader.Size > 10<<20 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Document must be smaller than 10MB",
		})
	}

	var user models.User
	err = kc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch user",
		})
	}
	if user.KYC.Level == models.KYCLevel2 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Account is already verified",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	normalized, _, err := services.NormalizeImage(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Uploaded file is not a readable image",
		})
	}

	objectName := fmt.Sprintf("kyc/%s/%s-%s.jpg", userID.Hex(), docType, uuid.New().String())
	url, err := kc.Storage.Upload(ctx, objectName, normalized)
	if err != nil {
		log.Printf("KYC upload failed for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store document",
		})
	}

	now := time.Now()
	doc := models.KYCDocument{Type: docType, URL: url, UploadedAt: now}

	// Replace a previous upload of the same slot, then append the new one.
	if _, err := kc.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"kyc.documents": bson.M{"type": docType}}},
	); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update KYC documents",
		})
	}
	if _, err := kc.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"kyc.documents": doc},
			"$set": bson.M{
				"kyc.level": models.KYCPending,
				"kyc.note":  "",
				"updatedAt": now,
			},
		},
	); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update KYC documents",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Document uploaded, verification pending review",
		Data:    doc,
	})
}

// GetKYC returns the caller's verification state.
func (kc *KYCController) GetKYC(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := objectIDFromClaims(claims)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var user models.User
	err = kc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch KYC state",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "KYC state retrieved successfully",
		Data:    user.KYC,
	})
}

// ListPendingKYC lists users awaiting review.
func (kc *KYCController) ListPendingKYC(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: 1}}).
		SetProjection(bson.M{"password": 0}).
		SetLimit(200)
	cursor, err := kc.DB.Collection("users").Find(ctx, bson.M{"kyc.level": models.KYCPending}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch pending verifications",
		})
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode pending verifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending verifications retrieved successfully",
		Data:    users,
	})
}

// ReviewKYC approves or rejects a pending verification. The level flip is
// filtered on PENDING so two admins cannot both decide the same submission.
func (kc *KYCController) ReviewKYC(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	adminID, err := objectIDFromClaims(claims)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	var req struct {
		Action string `json:"action"` // "approve" or "reject"
		Note   string `json:"note,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var newLevel, outcome string
	switch req.Action {
	case "approve":
		newLevel = models.KYCLevel2
		outcome = "approved"
	case "reject":
		newLevel = models.KYCRejected
		outcome = "rejected"
		if req.Note == "" {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "A note is required when rejecting a verification",
			})
		}
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Action must be approve or reject",
		})
	}

	now := time.Now()
	res, err := kc.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID, "kyc.level": models.KYCPending},
		bson.M{"$set": bson.M{
			"kyc.level":      newLevel,
			"kyc.note":       utils.SanitizeInput(req.Note),
			"kyc.reviewedAt": now,
			"kyc.reviewedBy": adminID,
			"updatedAt":      now,
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update verification",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "No pending verification for this user",
		})
	}

	utils.WriteAuditLog(ctx, kc.DB, adminID, "kyc."+req.Action, userID.Hex(), req.Note)

	if kc.Mailer != nil {
		var user models.User
		if err := kc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil {
			if err := kc.Mailer.SendKYCDecision(user.Email, newLevel, req.Note); err != nil {
				log.Printf("Failed to send KYC decision email to %s: %v", user.Email, err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification " + outcome,
	})
}
