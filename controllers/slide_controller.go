// controllers/slide_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/utils"
)

// SlideController manages the homepage carousel.
type SlideController struct {
	DB *mongo.Database
}

func NewSlideController(db *mongo.Database) *SlideController {
	return &SlideController{DB: db}
}

// GetSlides returns active slides in display order.
func (sc *SlideController) GetSlides(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}})
	cursor, err := sc.DB.Collection("slides").Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch slides",
		})
	}
	defer cursor.Close(ctx)

	var slides []models.Slide
	if err := cursor.All(ctx, &slides); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode slides",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Slides retrieved successfully",
		Data:    slides,
	})
}

// ListSlides is the admin view including inactive slides.
func (sc *SlideController) ListSlides(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}})
	cursor, err := sc.DB.Collection("slides").Find(ctx, bson.M{}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch slides",
		})
	}
	defer cursor.Close(ctx)

	var slides []models.Slide
	if err := cursor.All(ctx, &slides); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode slides",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Slides retrieved successfully",
		Data:    slides,
	})
}

// CreateSlide adds a carousel entry.
func (sc *SlideController) CreateSlide(c echo.Context) error {
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

	var req models.SlideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and a valid image URL are required",
		})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	slide := models.Slide{
		Title:     utils.SanitizeInput(req.Title),
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := sc.DB.Collection("slides").InsertOne(ctx, slide)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create slide",
		})
	}
	slide.ID = result.InsertedID.(primitive.ObjectID)

	utils.WriteAuditLog(ctx, sc.DB, adminID, "slide.created", slide.ID.Hex(), slide.Title)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Slide created successfully",
		Data:    slide,
	})
}

// UpdateSlide edits a carousel entry.
func (sc *SlideController) UpdateSlide(c echo.Context) error {
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

	slideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid slide ID format",
		})
	}

	var req models.SlideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		update["title"] = utils.SanitizeInput(req.Title)
	}
	if req.ImageURL != "" {
		update["imageUrl"] = req.ImageURL
	}
	if req.LinkURL != "" {
		update["linkUrl"] = req.LinkURL
	}
	if req.SortOrder != 0 {
		update["sortOrder"] = req.SortOrder
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}

	res, err := sc.DB.Collection("slides").UpdateOne(ctx,
		bson.M{"_id": slideID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update slide",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Slide not found",
		})
	}

	utils.WriteAuditLog(ctx, sc.DB, adminID, "slide.updated", slideID.Hex(), "")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Slide updated successfully",
	})
}

// DeleteSlide removes a carousel entry.
func (sc *SlideController) DeleteSlide(c echo.Context) error {
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

	slideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid slide ID format",
		})
	}

	res, err := sc.DB.Collection("slides").DeleteOne(ctx, bson.M{"_id": slideID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete slide",
		})
	}
	if res.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Slide not found",
		})
	}

	utils.WriteAuditLog(ctx, sc.DB, adminID, "slide.deleted", slideID.Hex(), "")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Slide deleted successfully",
	})
}
