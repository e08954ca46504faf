// controllers/car_controller.go
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

// CarController serves the EV storefront inventory. Listing and detail are
// public; mutations are admin-only.
type CarController struct {
	DB *mongo.Database
}

func NewCarController(db *mongo.Database) *CarController {
	return &CarController{DB: db}
}

// GetCars lists inventory, optionally filtered by status or make.
func (cc *CarController) GetCars(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if mk := c.QueryParam("make"); mk != "" {
		filter["make"] = mk
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := cc.DB.Collection("cars").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch cars",
		})
	}
	defer cursor.Close(ctx)

	var cars []models.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode cars",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cars retrieved successfully",
		Data:    cars,
	})
}

// GetCar returns a single listing.
func (cc *CarController) GetCar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid car ID format",
		})
	}

	var car models.Car
	err = cc.DB.Collection("cars").FindOne(ctx, bson.M{"_id": carID}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Car not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch car",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Car retrieved successfully",
		Data:    car,
	})
}

// CreateCar adds a listing.
func (cc *CarController) CreateCar(c echo.Context) error {
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

	var req models.CarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Make, model, year and a positive price are required",
		})
	}

	status := req.Status
	if status == "" {
		status = models.CarAvailable
	}
	if status != models.CarAvailable && status != models.CarReserved && status != models.CarSold {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be available, reserved or sold",
		})
	}

	now := time.Now()
	car := models.Car{
		Make:        utils.SanitizeInput(req.Make),
		Model:       utils.SanitizeInput(req.Model),
		Year:        req.Year,
		Price:       req.Price,
		RangeKM:     req.RangeKM,
		Description: utils.SanitizeInput(req.Description),
		ImageURLs:   req.ImageURLs,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := cc.DB.Collection("cars").InsertOne(ctx, car)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create car",
		})
	}
	car.ID = result.InsertedID.(primitive.ObjectID)

	utils.WriteAuditLog(ctx, cc.DB, adminID, "car.created", car.ID.Hex(), car.Make+" "+car.Model)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Car created successfully",
		Data:    car,
	})
}

// UpdateCar edits a listing.
func (cc *CarController) UpdateCar(c echo.Context) error {
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

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid car ID format",
		})
	}

	var req models.CarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Make != "" {
		update["make"] = utils.SanitizeInput(req.Make)
	}
	if req.Model != "" {
		update["model"] = utils.SanitizeInput(req.Model)
	}
	if req.Year != 0 {
		update["year"] = req.Year
	}
	if req.Price != 0 {
		update["price"] = req.Price
	}
	if req.RangeKM != 0 {
		update["rangeKm"] = req.RangeKM
	}
	if req.Description != "" {
		update["description"] = utils.SanitizeInput(req.Description)
	}
	if req.ImageURLs != nil {
		update["imageUrls"] = req.ImageURLs
	}
	if req.Status != "" {
		if req.Status != models.CarAvailable && req.Status != models.CarReserved && req.Status != models.CarSold {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Status must be available, reserved or sold",
			})
		}
		update["status"] = req.Status
	}

	res, err := cc.DB.Collection("cars").UpdateOne(ctx,
		bson.M{"_id": carID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update car",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Car not found",
		})
	}

	utils.WriteAuditLog(ctx, cc.DB, adminID, "car.updated", carID.Hex(), "")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Car updated successfully",
	})
}

// DeleteCar removes a listing. Cars with open orders are protected.
func (cc *CarController) DeleteCar(c echo.Context) error {
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

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid car ID format",
		})
	}

	open, err := cc.DB.Collection("orders").CountDocuments(ctx, bson.M{
		"carId":  carID,
		"status": bson.M{"$in": []string{models.OrderPending, models.OrderConfirmed}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check open orders",
		})
	}
	if open > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Car has open orders and cannot be deleted",
		})
	}

	res, err := cc.DB.Collection("cars").DeleteOne(ctx, bson.M{"_id": carID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete car",
		})
	}
	if res.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Car not found",
		})
	}

	utils.WriteAuditLog(ctx, cc.DB, adminID, "car.deleted", carID.Hex(), "")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Car deleted successfully",
	})
}
