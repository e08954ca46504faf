// models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxDividend   = "dividend"
)

// Transaction statuses
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxDeclined  = "declined"
)

// Transaction is one row of the append-only wallet ledger. Rows are never
// updated except for the pending -> completed/declined status flip performed
// by the admin review handler.
type Transaction struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	Reference   string              `bson:"reference" json:"reference"`
	Type        string              `bson:"type" json:"type"`     // deposit, withdrawal, dividend
	Amount      float64             `bson:"amount" json:"amount"` // always positive
	Method      string              `bson:"method,omitempty" json:"method,omitempty"`
	Status      string              `bson:"status" json:"status"` // pending, completed, declined
	EvidenceURL string              `bson:"evidenceUrl,omitempty" json:"evidenceUrl,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	AdminID     *primitive.ObjectID `bson:"adminId,omitempty" json:"adminId,omitempty"`
	AdminNote   string              `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	ProcessedAt *time.Time          `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// WalletActionRequest is the user request to move money in or out.
type WalletActionRequest struct {
	Action      string  `json:"action" validate:"required"` // "deposit" or "withdraw"
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method,omitempty"`
	EvidenceURL string  `json:"evidenceUrl,omitempty"`
	Description string  `json:"description,omitempty"`
}

// TransactionDecisionRequest is the admin approve/decline body.
type TransactionDecisionRequest struct {
	Status string `json:"status" validate:"required"` // "completed" or "declined"
	Note   string `json:"note,omitempty"`
}
