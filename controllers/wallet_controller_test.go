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

func pendingWithdrawalDoc(txID, userID primitive.ObjectID, amount float64) bson.D {
	return bson.D{
		{Key: "_id", Value: txID},
		{Key: "userId", Value: userID},
		{Key: "reference", Value: "WDR-20260801-0F3A9C21"},
		{Key: "type", Value: models.TxWithdrawal},
		{Key: "amount", Value: amount},
		{Key: "status", Value: models.TxPending},
	}
}

func TestProcessTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	adminID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	txID := primitive.NewObjectID()
	const amount = 300.0

	mt.Run("failed debit releases the claim completely", func(mt *mtest.T) {
		db := mt.Client.Database("voltvest")
		wc := NewWalletController(db, repositories.NewWalletRepository(db), services.NewMailer(), nil)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.transactions", mtest.FirstBatch,
				pendingWithdrawalDoc(txID, userID, amount)),
			// claim wins
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// conditional debit matches nothing
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// the user exists, so the balance check failed
			mtest.CreateCursorResponse(0, "voltvest.users", mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(1)}}),
			// revert
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), txID.Hex(),
			`{"status":"completed","note":"paying out"}`)
		require.NoError(mt.T, wc.ProcessTransaction(c))
		assert.Equal(mt.T, http.StatusBadRequest, rec.Code)
		assert.Contains(mt.T, rec.Body.String(), "Insufficient balance")

		// Claim, then revert. The revert must clear every field the claim set,
		// otherwise the released row keeps the admin's note and timestamps.
		txUpdates := updateCommands(mt.GetAllStartedEvents(), "transactions")
		require.Len(mt.T, txUpdates, 2)

		revert := txUpdates[1].Lookup("u").Document()
		assert.Equal(mt.T, models.TxPending, revert.Lookup("$set").Document().Lookup("status").StringValue())

		unset := revert.Lookup("$unset").Document()
		for _, field := range []string{"adminId", "adminNote", "processedAt"} {
			_, err := unset.LookupErr(field)
			assert.NoErrorf(mt.T, err, "revert leaves %s on the released row", field)
		}
	})

	mt.Run("losing the claim race conflicts without touching the wallet", func(mt *mtest.T) {
		db := mt.Client.Database("voltvest")
		wc := NewWalletController(db, repositories.NewWalletRepository(db), services.NewMailer(), nil)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "voltvest.transactions", mtest.FirstBatch,
				pendingWithdrawalDoc(txID, userID, amount)),
			// another admin's decision flipped the status first
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		c, rec := newAdminContext(http.MethodPut, adminID.Hex(), txID.Hex(), `{"status":"declined"}`)
		require.NoError(mt.T, wc.ProcessTransaction(c))
		assert.Equal(mt.T, http.StatusConflict, rec.Code)

		assert.Empty(mt.T, updateCommands(mt.GetAllStartedEvents(), "users"))
	})
}
