// controllers/order_controller.go
package controllers

import (
	"context"
	"log"
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

// OrderController handles car reservations. Ordering reserves the car at the
// listed price; payment settles offline, so the wallet is never touched here.
type OrderController struct {
	DB *mongo.Database
}

func NewOrderController(db *mongo.Database) *OrderController {
	return &OrderController{DB: db}
}

// CreateOrder reserves an available car for the caller. The status flip on
// the car is filtered on available, so two buyers cannot reserve the same
// vehicle.
func (oc *OrderController) CreateOrder(c echo.Context) error {
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

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "carId is required",
		})
	}

	carID, err := primitive.ObjectIDFromHex(req.CarID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid car ID format",
		})
	}

	var car models.Car
	err = oc.DB.Collection("cars").FindOne(ctx, bson.M{"_id": carID}).Decode(&car)
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

	now := time.Now()
	res, err := oc.DB.Collection("cars").UpdateOne(ctx,
		bson.M{"_id": carID, "status": models.CarAvailable},
		bson.M{"$set": bson.M{"status": models.CarReserved, "updatedAt": now}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reserve car",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Car is no longer available",
		})
	}

	order := models.Order{
		UserID:    userID,
		CarID:     carID,
		Reference: utils.NewReference("ORD"),
		Amount:    car.Price,
		Status:    models.OrderPending,
		Note:      utils.SanitizeInput(req.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := oc.DB.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		// Release the reservation so the car is not stranded.
		if _, revertErr := oc.DB.Collection("cars").UpdateOne(ctx,
			bson.M{"_id": carID, "status": models.CarReserved},
			bson.M{"$set": bson.M{"status": models.CarAvailable, "updatedAt": time.Now()}},
		); revertErr != nil {
			log.Printf("Failed to release reservation on car %s: %v", carID.Hex(), revertErr)
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create order",
		})
	}
	order.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order created successfully",
		Data:    order,
	})
}

// GetOrders lists the caller's orders, newest first.
func (oc *OrderController) GetOrders(c echo.Context) error {
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

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := oc.DB.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch orders",
		})
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// ListOrders is the admin view across all users.
func (oc *OrderController) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown order status",
			})
		}
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := oc.DB.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch orders",
		})
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// UpdateOrderStatus moves an order along its lifecycle and keeps the car's
// status in step: delivered marks the car sold, cancelled releases it.
func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
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

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID format",
		})
	}

	var req models.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if !models.ValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be pending, confirmed, delivered or cancelled",
		})
	}

	var order models.Order
	err = oc.DB.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch order",
		})
	}

	if order.Status == models.OrderDelivered || order.Status == models.OrderCancelled {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Order is already closed",
		})
	}

	now := time.Now()
	update := bson.M{"status": req.Status, "updatedAt": now}
	if req.Note != "" {
		update["note"] = utils.SanitizeInput(req.Note)
	}

	res, err := oc.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": orderID, "status": order.Status},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update order",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Order was modified concurrently, retry",
		})
	}

	switch req.Status {
	case models.OrderDelivered:
		if _, err := oc.DB.Collection("cars").UpdateOne(ctx,
			bson.M{"_id": order.CarID},
			bson.M{"$set": bson.M{"status": models.CarSold, "updatedAt": now}},
		); err != nil {
			log.Printf("Failed to mark car %s sold: %v", order.CarID.Hex(), err)
		}
	case models.OrderCancelled:
		if _, err := oc.DB.Collection("cars").UpdateOne(ctx,
			bson.M{"_id": order.CarID, "status": models.CarReserved},
			bson.M{"$set": bson.M{"status": models.CarAvailable, "updatedAt": now}},
		); err != nil {
			log.Printf("Failed to release car %s: %v", order.CarID.Hex(), err)
		}
	}

	utils.WriteAuditLog(ctx, oc.DB, adminID, "order.status_changed", orderID.Hex(), req.Status)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order status updated",
	})
}
