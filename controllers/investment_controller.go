// controllers/investment_controller.go
package controllers

import (
	"context"
	"fmt"
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
	"github.com/voltvest/voltvest_backend/repositories"
	"github.com/voltvest/voltvest_backend/utils"
)

// InvestmentController handles the user side of the investment lifecycle:
// browsing plans, requesting an investment and liquidating an active one.
type InvestmentController struct {
	DB   *mongo.Database
	Repo *repositories.WalletRepository
}

func NewInvestmentController(db *mongo.Database, repo *repositories.WalletRepository) *InvestmentController {
	return &InvestmentController{DB: db, Repo: repo}
}

// GetPlans lists active plans.
func (ic *InvestmentController) GetPlans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "minAmount", Value: 1}})
	cursor, err := ic.DB.Collection("plans").Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch plans",
		})
	}
	defer cursor.Close(ctx)

	var plans []models.InvestmentPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode plans",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plans retrieved successfully",
		Data:    plans,
	})
}

// CreateInvestment validates the plan and balance and records a pending
// investment. The wallet is NOT debited here; the debit happens atomically
// at approval time.
func (ic *InvestmentController) CreateInvestment(c echo.Context) error {
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

	var req models.CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan and a positive amount are required",
		})
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	var plan models.InvestmentPlan
	err = ic.DB.Collection("plans").FindOne(ctx, bson.M{"_id": planID, "isActive": true}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Plan not found or inactive",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up plan",
		})
	}

	if err := plan.ValidateAmount(req.Amount); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	user, err := ic.Repo.FindUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up user",
		})
	}
	if user.Wallet.Balance < req.Amount {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Insufficient wallet balance",
		})
	}

	now := time.Now()
	investment := models.Investment{
		UserID:       userID,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		Amount:       req.Amount,
		DailyReturn:  plan.DailyReturn,
		DurationDays: plan.DurationDays,
		Returns:      0,
		Status:       models.InvestmentPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := ic.DB.Collection("investments").InsertOne(ctx, investment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create investment",
		})
	}
	investment.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Investment request submitted for approval",
		Data:    investment,
	})
}

// GetInvestments lists the caller's investments, newest first.
func (ic *InvestmentController) GetInvestments(c echo.Context) error {
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
	cursor, err := ic.DB.Collection("investments").Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch investments",
		})
	}
	defer cursor.Close(ctx)

	var investments []models.Investment
	if err := cursor.All(ctx, &investments); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode investments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Investments retrieved successfully",
		Data:    investments,
	})
}

// LiquidateInvestment terminates one of the caller's active investments and
// credits principal plus recorded returns back to the wallet. The status
// flip is filtered on status=active, so liquidating twice fails the second
// time.
func (ic *InvestmentController) LiquidateInvestment(c echo.Context) error {
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

	invID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid investment ID format",
		})
	}

	var investment models.Investment
	err = ic.DB.Collection("investments").FindOne(ctx, bson.M{"_id": invID, "userId": userID}).Decode(&investment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Investment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find investment",
		})
	}

	if investment.Status != models.InvestmentActive {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Only active investments can be liquidated",
		})
	}

	now := time.Now()
	res, err := ic.DB.Collection("investments").UpdateOne(ctx,
		bson.M{"_id": invID, "userId": userID, "status": models.InvestmentActive},
		bson.M{"$set": bson.M{
			"status":      models.InvestmentCompleted,
			"processedAt": now,
			"updatedAt":   now,
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update investment",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Investment is no longer active",
		})
	}

	credit := models.LiquidationCredit(investment)

	if _, err := ic.Repo.AppendLedger(ctx, models.Transaction{
		UserID:      userID,
		Reference:   utils.NewReference("DIV"),
		Type:        models.TxDividend,
		Amount:      credit,
		Status:      models.TxCompleted,
		Description: fmt.Sprintf("Liquidation of %s node (principal %.2f + returns %.2f)", investment.PlanName, investment.Amount, investment.Returns),
		CreatedAt:   now,
	}); err != nil {
		log.Printf("Failed to append liquidation ledger row for %s: %v", invID.Hex(), err)
	}

	if err := ic.Repo.Credit(ctx, userID, credit); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to credit wallet",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Investment liquidated successfully",
		Data: map[string]interface{}{
			"credited": credit,
		},
	})
}
