// controllers/settings_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/utils"
)

// SettingsController manages the singleton platform settings document.
type SettingsController struct {
	DB *mongo.Database
}

func NewSettingsController(db *mongo.Database) *SettingsController {
	return &SettingsController{DB: db}
}

// GetSettings returns current platform settings. Before the first admin edit
// the document does not exist yet; sensible defaults are returned instead.
func (sc *SettingsController) GetSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var settings models.Settings
	err := sc.DB.Collection("settings").FindOne(ctx, bson.M{}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "Settings retrieved successfully",
				Data:    models.Settings{Level1WithdrawalLimit: 1000},
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings retrieved successfully",
		Data:    settings,
	})
}

// UpdateSettings upserts the singleton settings document.
func (sc *SettingsController) UpdateSettings(c echo.Context) error {
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

	var req models.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{
		"updatedAt": time.Now(),
		"updatedBy": adminID,
	}
	if req.DepositWallet != nil {
		update["depositWallet"] = models.DepositWallet{
			Bank:          utils.SanitizeInput(req.DepositWallet.Bank),
			AccountName:   utils.SanitizeInput(req.DepositWallet.AccountName),
			AccountNumber: utils.SanitizeInput(req.DepositWallet.AccountNumber),
		}
	}
	if req.Level1WithdrawalLimit != nil {
		if *req.Level1WithdrawalLimit < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Withdrawal limit cannot be negative",
			})
		}
		update["level1WithdrawalLimit"] = *req.Level1WithdrawalLimit
	}
	if req.MaintenanceMode != nil {
		update["maintenanceMode"] = *req.MaintenanceMode
	}
	if req.SupportEmail != nil {
		email, err := utils.SanitizeEmail(*req.SupportEmail)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid support email address",
			})
		}
		update["supportEmail"] = email
	}

	opts := options.Update().SetUpsert(true)
	if _, err := sc.DB.Collection("settings").UpdateOne(ctx, bson.M{}, bson.M{"$set": update}, opts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update settings",
		})
	}

	utils.WriteAuditLog(ctx, sc.DB, adminID, "settings.updated", "settings", "")

	var settings models.Settings
	if err := sc.DB.Collection("settings").FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Settings updated but could not be re-read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings updated successfully",
		Data:    settings,
	})
}
