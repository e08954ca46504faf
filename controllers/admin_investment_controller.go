// controllers/admin_investment_controller.go
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
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/utils"
)

// AdminInvestmentController handles the admin side of the investment
// lifecycle: the pending queue, approvals/declines, returns adjustments and
// plan management.
type AdminInvestmentController struct {
	DB     *mongo.Database
	Repo   *repositories.WalletRepository
	Mailer *services.Mailer
}

func NewAdminInvestmentController(db *mongo.Database, repo *repositories.WalletRepository, mailer *services.Mailer) *AdminInvestmentController {
	return &AdminInvestmentController{DB: db, Repo: repo, Mailer: mailer}
}

// ListInvestments lists investments, optionally filtered by status.
func (aic *AdminInvestmentController) ListInvestments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := aic.DB.Collection("investments").Find(ctx, filter, opts)
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

// ApproveInvestment debits the owner's wallet and activates a pending
// investment. The debit is a conditional update that re-checks the balance
// at write time; the activation is filtered on status=pending so the
// transition happens exactly once.
func (aic *AdminInvestmentController) ApproveInvestment(c echo.Context) error {
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

	invID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid investment ID format",
		})
	}

	var investment models.Investment
	err = aic.DB.Collection("investments").FindOne(ctx, bson.M{"_id": invID}).Decode(&investment)
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

	if investment.Status != models.InvestmentPending {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Investment is already processed",
		})
	}

	// Debit first. If the balance changed since the request was made, the
	// conditional update fails and nothing is activated.
	if err := aic.Repo.Debit(ctx, investment.UserID, investment.Amount); err != nil {
		if err == repositories.ErrInsufficientBalance {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Insufficient balance to approve this investment",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to debit wallet",
		})
	}

	now := time.Now()
	endDate := models.Maturity(now, investment.DurationDays)

	res, err := aic.DB.Collection("investments").UpdateOne(ctx,
		bson.M{"_id": invID, "status": models.InvestmentPending},
		bson.M{"$set": bson.M{
			"status":      models.InvestmentActive,
			"startDate":   now,
			"endDate":     endDate,
			"approvedBy":  adminID,
			"processedAt": now,
			"updatedAt":   now,
		}},
	)
	if err != nil || res.MatchedCount == 0 {
		// Another decision won the race after our debit; give the money back.
		if creditErr := aic.Repo.Credit(ctx, investment.UserID, investment.Amount); creditErr != nil {
			log.Printf("Failed to refund debit after activation race on %s: %v", invID.Hex(), creditErr)
		}
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Investment is already processed",
		})
	}

	if _, err := aic.Repo.AppendLedger(ctx, models.Transaction{
		UserID:      investment.UserID,
		Reference:   utils.NewReference("INV"),
		Type:        models.TxWithdrawal,
		Amount:      investment.Amount,
		Status:      models.TxCompleted,
		Description: fmt.Sprintf("Investment in %s node", investment.PlanName),
		AdminID:     &adminID,
		ProcessedAt: &now,
		CreatedAt:   now,
	}); err != nil {
		log.Printf("Failed to append investment ledger row for %s: %v", invID.Hex(), err)
	}

	utils.WriteAuditLog(ctx, aic.DB, adminID, "investment.approved", invID.Hex(),
		fmt.Sprintf("plan=%s amount=%.2f endDate=%s", investment.PlanName, investment.Amount, endDate.Format(time.RFC3339)))

	aic.notifyDecision(ctx, investment, "approved")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Investment approved",
		Data: map[string]interface{}{
			"startDate": now,
			"endDate":   endDate,
		},
	})
}

// DeclineInvestment deletes a pending investment. The delete filter includes
// status=pending, so an already-activated node cannot be removed and the
// wallet is never touched.
func (aic *AdminInvestmentController) DeclineInvestment(c echo.Context) error {
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

	invID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid investment ID format",
		})
	}

	var investment models.Investment
	if err := aic.DB.Collection("investments").FindOne(ctx, bson.M{"_id": invID}).Decode(&investment); err != nil {
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

	res, err := aic.DB.Collection("investments").DeleteOne(ctx,
		bson.M{"_id": invID, "status": models.InvestmentPending},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decline investment",
		})
	}
	if res.DeletedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Only pending investments can be declined",
		})
	}

	utils.WriteAuditLog(ctx, aic.DB, adminID, "investment.declined", invID.Hex(),
		fmt.Sprintf("plan=%s amount=%.2f", investment.PlanName, investment.Amount))

	aic.notifyDecision(ctx, investment, "declined")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Investment declined",
	})
}

// AdjustReturns sets the recorded returns on an active investment. This is
// the only path that moves the returns figure; no background job accrues it.
func (aic *AdminInvestmentController) AdjustReturns(c echo.Context) error {
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

	invID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid investment ID format",
		})
	}

	var req models.AdjustReturnsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Returns < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Returns cannot be negative",
		})
	}

	res, err := aic.DB.Collection("investments").UpdateOne(ctx,
		bson.M{"_id": invID, "status": models.InvestmentActive},
		bson.M{"$set": bson.M{"returns": req.Returns, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to adjust returns",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Only active investments can have returns adjusted",
		})
	}

	utils.WriteAuditLog(ctx, aic.DB, adminID, "investment.returns_adjusted", invID.Hex(),
		fmt.Sprintf("returns=%.2f note=%s", req.Returns, utils.SanitizeInput(req.Note)))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Returns adjusted",
	})
}

// CreatePlan adds a new investment plan.
func (aic *AdminInvestmentController) CreatePlan(c echo.Context) error {
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

	var req models.PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	if req.MaxAmount < req.MinAmount {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Maximum amount must be at least the minimum amount",
		})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	plan := models.InvestmentPlan{
		Name:         utils.SanitizeInput(req.Name),
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		DailyReturn:  req.DailyReturn,
		DurationDays: req.DurationDays,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := aic.DB.Collection("plans").InsertOne(ctx, plan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create plan",
		})
	}
	plan.ID = result.InsertedID.(primitive.ObjectID)

	utils.WriteAuditLog(ctx, aic.DB, adminID, "plan.created", plan.ID.Hex(), plan.Name)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Plan created successfully",
		Data:    plan,
	})
}

// GetAllPlans lists every plan including inactive ones.
func (aic *AdminInvestmentController) GetAllPlans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := aic.DB.Collection("plans").Find(ctx, bson.M{})
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

// UpdatePlan replaces the editable fields of a plan.
func (aic *AdminInvestmentController) UpdatePlan(c echo.Context) error {
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

	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	var req models.PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	update := bson.M{
		"name":         utils.SanitizeInput(req.Name),
		"minAmount":    req.MinAmount,
		"maxAmount":    req.MaxAmount,
		"dailyReturn":  req.DailyReturn,
		"durationDays": req.DurationDays,
		"updatedAt":    time.Now(),
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}

	res, err := aic.DB.Collection("plans").UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update plan",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}

	utils.WriteAuditLog(ctx, aic.DB, adminID, "plan.updated", planID.Hex(), req.Name)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan updated successfully",
	})
}

// DeletePlan deactivates a plan instead of removing it, so existing
// investments keep their plan reference.
func (aic *AdminInvestmentController) DeletePlan(c echo.Context) error {
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

	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	res, err := aic.DB.Collection("plans").UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete plan",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}

	utils.WriteAuditLog(ctx, aic.DB, adminID, "plan.deactivated", planID.Hex(), "")

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan deactivated successfully",
	})
}

func (aic *AdminInvestmentController) notifyDecision(ctx context.Context, investment models.Investment, status string) {
	user, err := aic.Repo.FindUser(ctx, investment.UserID)
	if err != nil {
		log.Printf("Failed to load user %s for notification: %v", investment.UserID.Hex(), err)
		return
	}
	if err := aic.Mailer.SendInvestmentDecision(user.Email, investment.PlanName, status, investment.Amount); err != nil {
		log.Printf("Failed to mail investment decision for %s: %v", investment.ID.Hex(), err)
	}
}
