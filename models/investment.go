// models/investment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Investment statuses
const (
	InvestmentPending   = "pending"
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
	InvestmentCancelled = "cancelled"
)

// Investment is a user's commitment of funds to a plan ("node" in the UI).
// The wallet is debited at approval time, not at request time.
type Investment struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID  `json:"userId" bson:"userId"`
	PlanID       primitive.ObjectID  `json:"planId" bson:"planId"`
	PlanName     string              `json:"planName" bson:"planName"`
	Amount       float64             `json:"amount" bson:"amount"`
	DailyReturn  float64             `json:"dailyReturn" bson:"dailyReturn"`
	DurationDays int                 `json:"durationDays" bson:"durationDays"`
	Returns      float64             `json:"returns" bson:"returns"`
	Status       string              `json:"status" bson:"status"` // pending, active, completed, cancelled
	StartDate    *time.Time          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate      *time.Time          `json:"endDate,omitempty" bson:"endDate,omitempty"`
	ApprovedBy   *primitive.ObjectID `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ProcessedAt  *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type CreateInvestmentRequest struct {
	PlanID string  `json:"planId" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type AdjustReturnsRequest struct {
	Returns float64 `json:"returns" validate:"gte=0"`
	Note    string  `json:"note,omitempty"`
}

// Maturity returns the end date for an investment activated at start.
func Maturity(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}

// LiquidationCredit is the amount returned to the wallet when an active
// investment is liquidated: principal plus whatever returns have been
// recorded. Nothing accrues returns over time; the field only moves through
// explicit admin adjustment.
func LiquidationCredit(inv Investment) float64 {
	return inv.Amount + inv.Returns
}
