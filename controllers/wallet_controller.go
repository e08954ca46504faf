// controllers/wallet_controller.go
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
	ws "github.com/voltvest/voltvest_backend/websocket"
)

// WalletController handles the wallet ledger: user deposit/withdrawal
// requests and the admin review queue.
type WalletController struct {
	DB     *mongo.Database
	Repo   *repositories.WalletRepository
	Mailer *services.Mailer
	Hub    *ws.Hub
}

func NewWalletController(db *mongo.Database, repo *repositories.WalletRepository, mailer *services.Mailer, hub *ws.Hub) *WalletController {
	return &WalletController{DB: db, Repo: repo, Mailer: mailer, Hub: hub}
}

// GetWallet returns the caller's balance and portfolio snapshot.
func (wc *WalletController) GetWallet(c echo.Context) error {
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

	user, err := wc.Repo.FindUser(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch wallet",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallet retrieved successfully",
		Data: map[string]interface{}{
			"wallet":    user.Wallet,
			"portfolio": user.Portfolio,
			"kycLevel":  user.KYC.Level,
		},
	})
}

// CreateTransaction appends a pending deposit or withdrawal request to the
// ledger. The balance is untouched until an admin approves the row.
func (wc *WalletController) CreateTransaction(c echo.Context) error {
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

	var req models.WalletActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Amount must be greater than zero",
		})
	}

	if req.Action != "deposit" && req.Action != "withdraw" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Action must be 'deposit' or 'withdraw'",
		})
	}

	user, err := wc.Repo.FindUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up user",
		})
	}

	settings := wc.loadSettings(ctx)

	tx := models.Transaction{
		UserID:      userID,
		Amount:      req.Amount,
		Method:      utils.SanitizeInput(req.Method),
		Status:      models.TxPending,
		EvidenceURL: req.EvidenceURL,
		Description: utils.SanitizeInput(req.Description),
		CreatedAt:   time.Now(),
	}

	switch req.Action {
	case "deposit":
		tx.Type = models.TxDeposit
		tx.Reference = utils.NewReference("DEP")
	case "withdraw":
		tx.Type = models.TxWithdrawal
		tx.Reference = utils.NewReference("WDR")

		// KYC gate, then a submission-time balance check. The balance is not
		// reserved; the approval handler re-checks atomically before paying.
		if err := models.WithdrawalAllowed(user.KYC.Level, req.Amount, settings.Level1WithdrawalLimit); err != nil {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: err.Error(),
			})
		}
		if user.Wallet.Balance < req.Amount {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Insufficient wallet balance",
			})
		}
	}

	txID, err := wc.Repo.AppendLedger(ctx, tx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create transaction",
		})
	}
	tx.ID = txID

	data := map[string]interface{}{"transaction": tx}

	if tx.Type == models.TxDeposit {
		instructions := map[string]interface{}{
			"bank":          settings.DepositWallet.Bank,
			"accountName":   settings.DepositWallet.AccountName,
			"accountNumber": settings.DepositWallet.AccountNumber,
			"reference":     tx.Reference,
		}
		if qr, qrErr := utils.DepositQR(settings.DepositWallet.Bank, settings.DepositWallet.AccountNumber, tx.Reference, tx.Amount); qrErr == nil {
			instructions["qr"] = qr
		} else {
			log.Printf("Failed to build deposit QR for %s: %v", tx.Reference, qrErr)
		}
		data["paymentInstructions"] = instructions
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Transaction request submitted",
		Data:    data,
	})
}

// GetTransactions returns the caller's ledger, newest first.
func (wc *WalletController) GetTransactions(c echo.Context) error {
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

	txs, err := wc.Repo.LedgerForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data:    txs,
	})
}

// ListTransactions is the admin review queue, optionally filtered by status.
func (wc *WalletController) ListTransactions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := wc.DB.Collection("transactions").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch transactions",
		})
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data:    txs,
	})
}

// ProcessTransaction approves or declines a pending ledger row. The status
// flip is filtered on status=pending so a row is processed exactly once; the
// balance change for an approved withdrawal is a conditional debit that
// re-checks the balance at write time.
func (wc *WalletController) ProcessTransaction(c echo.Context) error {
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

	txID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid transaction ID format",
		})
	}

	var req models.TransactionDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Status != models.TxCompleted && req.Status != models.TxDeclined {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be 'completed' or 'declined'",
		})
	}

	var tx models.Transaction
	err = wc.DB.Collection("transactions").FindOne(ctx, bson.M{"_id": txID}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Transaction not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find transaction",
		})
	}

	if tx.Status != models.TxPending {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Transaction is already processed",
		})
	}

	now := time.Now()

	// Claim the row first: only one admin decision can win this update.
	res, err := wc.DB.Collection("transactions").UpdateOne(ctx,
		bson.M{"_id": txID, "status": models.TxPending},
		bson.M{"$set": bson.M{
			"status":      req.Status,
			"adminId":     adminID,
			"adminNote":   utils.SanitizeInput(req.Note),
			"processedAt": now,
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update transaction",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Transaction is already processed",
		})
	}

	// Declines never touch the wallet.
	if req.Status == models.TxCompleted {
		switch tx.Type {
		case models.TxDeposit:
			err = wc.Repo.Credit(ctx, tx.UserID, tx.Amount)
		case models.TxWithdrawal:
			err = wc.Repo.Debit(ctx, tx.UserID, tx.Amount)
		}

		if err != nil {
			// Release the claim so the row can be retried or declined.
			if _, revertErr := wc.DB.Collection("transactions").UpdateOne(ctx,
				bson.M{"_id": txID},
				bson.M{"$set": bson.M{"status": models.TxPending}, "$unset": bson.M{"adminId": "", "adminNote": "", "processedAt": ""}},
			); revertErr != nil {
				log.Printf("Failed to revert claim on transaction %s: %v", txID.Hex(), revertErr)
			}

			if err == repositories.ErrInsufficientBalance {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Insufficient balance to approve this withdrawal",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to apply balance change",
			})
		}
	}

	utils.WriteAuditLog(ctx, wc.DB, adminID, "transaction."+req.Status, txID.Hex(),
		fmt.Sprintf("%s %s amount=%.2f", tx.Type, tx.Reference, tx.Amount))

	wc.notifyDecision(ctx, tx, req.Status)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Transaction %s", req.Status),
	})
}

func (wc *WalletController) notifyDecision(ctx context.Context, tx models.Transaction, status string) {
	user, err := wc.Repo.FindUser(ctx, tx.UserID)
	if err != nil {
		log.Printf("Failed to load user %s for notification: %v", tx.UserID.Hex(), err)
		return
	}

	if err := wc.Mailer.SendTransactionDecision(user.Email, tx.Type, tx.Reference, status, tx.Amount); err != nil {
		log.Printf("Failed to mail transaction decision for %s: %v", tx.Reference, err)
	}

	if wc.Hub != nil {
		wc.Hub.SendToUser(tx.UserID, ws.Notification{
			Type:    ws.MessageTypeWallet,
			Message: fmt.Sprintf("Your %s request was %s", tx.Type, status),
			Data:    map[string]interface{}{"reference": tx.Reference, "status": status},
		})
	}
}

// loadSettings fetches the singleton settings document, falling back to
// zero-value defaults when none exists yet.
func (wc *WalletController) loadSettings(ctx context.Context) models.Settings {
	var settings models.Settings
	if err := wc.DB.Collection("settings").FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("Failed to load settings: %v", err)
		}
	}
	return settings
}
