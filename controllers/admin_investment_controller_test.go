package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/repositories"
	"github.com/voltvest/voltvest_backend/services"
)

func pendingInvestmentDoc(invID, userID primitive.ObjectID, amount float64) bson.D {
	return bson.D{
		{Key: "_id", Value: invID},
		{Key: "userId", Value: userID},
		{Key: "planId", Value: primitive.NewObjectID()},
		{Key: "planName", Value: "Fast Charger"},
		{Key: "amount", Value: amount},
		{Key: "dailyReturn", Value: 1.5},
		{Key: "durationDays", Value: 30},
		{Key: "returns", Value: 0.0},
		{Key: "status", Value: models.InvestmentPending},
	}
}

func TestApproveInvestment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	adminID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	invID := primitive.NewObjectID()
	const amount = 500.0

	mt.Run("debits exactly the invested amount and activates once", func(mt *mtest.T) {
		mt.Setenv("SMTP_HOST", "")

		db := mt.Client.Database("voltvest")
		aic := NewAdminInvestmentController(db, repositories.NewWalletRepository(db), services.NewMailer())

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.investments", mtest.FirstBatch,
				pendingInvestmentDoc(invID, userID, amount)),
			// wallet debit
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// activation
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// ledger insert
			mtest.CreateSuccessResponse(),
			// audit log insert
			mtest.CreateSuccessResponse(),
			// user lookup for the decision mail
			mtest.CreateCursorResponse(0, "voltvest.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: userID},
				{Key: "email", Value: "driver@voltvest.io"},
			}),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), invID.Hex(), "")
		require.NoError(mt.T, aic.ApproveInvestment(c))
		assert.Equal(mt.T, http.StatusOK, rec.Code)

		events := mt.GetAllStartedEvents()

		// The debit is conditional on the balance covering the amount, and
		// decrements by exactly that amount.
		debits := updateCommands(events, "users")
		require.Len(mt.T, debits, 1)
		q := debits[0].Lookup("q").Document()
		gte := q.Lookup("wallet.balance").Document().Lookup("$gte").Double()
		assert.Equal(mt.T, amount, gte)
		inc := debits[0].Lookup("u").Document().Lookup("$inc").Document().Lookup("wallet.balance").Double()
		assert.Equal(mt.T, -amount, inc)

		// The activation is filtered on the pending status.
		activations := updateCommands(events, "investments")
		require.Len(mt.T, activations, 1)
		aq := activations[0].Lookup("q").Document()
		assert.Equal(mt.T, models.InvestmentPending, aq.Lookup("status").StringValue())
		set := activations[0].Lookup("u").Document().Lookup("$set").Document()
		assert.Equal(mt.T, models.InvestmentActive, set.Lookup("status").StringValue())

		// Exactly one ledger row and one audit row.
		assert.Equal(mt.T, 1, countCommands(events, "insert", "transactions"))
		assert.Equal(mt.T, 1, countCommands(events, "insert", "auditLogs"))
	})

	mt.Run("insufficient balance rejects without activating", func(mt *mtest.T) {
		db := mt.Client.Database("voltvest")
		aic := NewAdminInvestmentController(db, repositories.NewWalletRepository(db), services.NewMailer())

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.investments", mtest.FirstBatch,
				pendingInvestmentDoc(invID, userID, amount)),
			// conditional debit matches nothing
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// the user exists, so the miss means the balance check failed
			mtest.CreateCursorResponse(0, "voltvest.users", mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(1)}}),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), invID.Hex(), "")
		require.NoError(mt.T, aic.ApproveInvestment(c))
		assert.Equal(mt.T, http.StatusBadRequest, rec.Code)
		assert.Contains(mt.T, rec.Body.String(), "Insufficient balance")

		// Nothing was activated and nothing was written to the ledger.
		events := mt.GetAllStartedEvents()
		assert.Empty(mt.T, updateCommands(events, "investments"))
		assert.Equal(mt.T, 0, countCommands(events, "insert", ""))
	})

	mt.Run("already processed investment conflicts without touching the wallet", func(mt *mtest.T) {
		db := mt.Client.Database("voltvest")
		aic := NewAdminInvestmentController(db, repositories.NewWalletRepository(db), services.NewMailer())

		active := pendingInvestmentDoc(invID, userID, amount)
		for i, e := range active {
			if e.Key == "status" {
				active[i].Value = models.InvestmentActive
			}
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.investments", mtest.FirstBatch, active),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), invID.Hex(), "")
		require.NoError(mt.T, aic.ApproveInvestment(c))
		assert.Equal(mt.T, http.StatusConflict, rec.Code)

		events := mt.GetAllStartedEvents()
		assert.Empty(mt.T, updateCommands(events, "users"))
		assert.Empty(mt.T, updateCommands(events, "investments"))
	})

	mt.Run("losing the activation race refunds the debit", func(mt *mtest.T) {
		db := mt.Client.Database("voltvest")
		aic := NewAdminInvestmentController(db, repositories.NewWalletRepository(db), services.NewMailer())

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.investments", mtest.FirstBatch,
				pendingInvestmentDoc(invID, userID, amount)),
			// debit succeeds
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// another decision flipped the status first
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// refund credit
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), invID.Hex(), "")
		require.NoError(mt.T, aic.ApproveInvestment(c))
		assert.Equal(mt.T, http.StatusConflict, rec.Code)

		// Debit then refund: the second users update adds the amount back.
		walletUpdates := updateCommands(mt.GetAllStartedEvents(), "users")
		require.Len(mt.T, walletUpdates, 2)
		refund := walletUpdates[1].Lookup("u").Document().Lookup("$inc").Document().Lookup("wallet.balance").Double()
		assert.Equal(mt.T, amount, refund)
	})
}
