// models/plan.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvestmentPlan is an admin-defined template for investments.
type InvestmentPlan struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	MinAmount    float64            `json:"minAmount" bson:"minAmount"`
	MaxAmount    float64            `json:"maxAmount" bson:"maxAmount"`
	DailyReturn  float64            `json:"dailyReturn" bson:"dailyReturn"` // percent per day
	DurationDays int                `json:"durationDays" bson:"durationDays"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type PlanRequest struct {
	Name         string  `json:"name" validate:"required"`
	MinAmount    float64 `json:"minAmount" validate:"required,gt=0"`
	MaxAmount    float64 `json:"maxAmount" validate:"required,gt=0"`
	DailyReturn  float64 `json:"dailyReturn" validate:"required,gt=0"`
	DurationDays int     `json:"durationDays" validate:"required,gt=0"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// ValidateAmount checks an investment amount against the plan limits.
func (p InvestmentPlan) ValidateAmount(amount float64) error {
	if amount < p.MinAmount {
		return fmt.Errorf("minimum investment for %s is %.2f", p.Name, p.MinAmount)
	}
	if p.MaxAmount > 0 && amount > p.MaxAmount {
		return fmt.Errorf("maximum investment for %s is %.2f", p.Name, p.MaxAmount)
	}
	return nil
}
