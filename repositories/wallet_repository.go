// repositories/wallet_repository.go
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltvest/voltvest_backend/models"
)

// ErrInsufficientBalance is returned when a conditional debit matches no
// document, meaning the balance check failed at write time.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// WalletRepository owns every balance mutation. The check and the decrement
// are a single conditional document update, so two concurrent debits of the
// same wallet can never both pass the balance check.
type WalletRepository struct {
	users        *mongo.Collection
	transactions *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{
		users:        db.Collection("users"),
		transactions: db.Collection("transactions"),
	}
}

// Credit adds amount to the user's balance.
func (r *WalletRepository) Credit(ctx context.Context, userID primitive.ObjectID, amount float64) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc": bson.M{"wallet.balance": amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Debit subtracts amount from the user's balance only if the balance covers
// it. Returns ErrInsufficientBalance when the conditional filter matches
// nothing but the user exists.
func (r *WalletRepository) Debit(ctx context.Context, userID primitive.ObjectID, amount float64) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{
			"_id":            userID,
			"wallet.balance": bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{"wallet.balance": -amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing user from a failed balance check.
		count, err := r.users.CountDocuments(ctx, bson.M{"_id": userID})
		if err != nil {
			return err
		}
		if count == 0 {
			return mongo.ErrNoDocuments
		}
		return ErrInsufficientBalance
	}
	return nil
}

// AppendLedger inserts one transaction row and returns its id.
func (r *WalletRepository) AppendLedger(ctx context.Context, tx models.Transaction) (primitive.ObjectID, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	res, err := r.transactions.InsertOne(ctx, tx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindUser loads a user document by id.
func (r *WalletRepository) FindUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LedgerForUser returns the user's transactions, newest first.
func (r *WalletRepository) LedgerForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.transactions.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
