package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaturity(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC), Maturity(start, 30))
	assert.Equal(t, start, Maturity(start, 0))

	// Month boundaries roll over, no day clamping surprises
	assert.Equal(t, time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC), Maturity(start, 60))
}

func TestLiquidationCredit(t *testing.T) {
	tests := []struct {
		name string
		inv  Investment
		want float64
	}{
		{"principal plus returns", Investment{Amount: 1000, Returns: 85.5}, 1085.5},
		{"no returns recorded", Investment{Amount: 500}, 500},
		{"zero investment", Investment{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LiquidationCredit(tt.inv), 1e-9)
		})
	}
}

func TestPlanValidateAmount(t *testing.T) {
	plan := InvestmentPlan{Name: "Fast Charger", MinAmount: 100, MaxAmount: 5000}

	assert.Error(t, plan.ValidateAmount(99.99))
	assert.NoError(t, plan.ValidateAmount(100))
	assert.NoError(t, plan.ValidateAmount(5000))
	assert.Error(t, plan.ValidateAmount(5000.01))

	// MaxAmount of zero means uncapped
	uncapped := InvestmentPlan{Name: "Supernode", MinAmount: 100}
	assert.NoError(t, uncapped.ValidateAmount(1_000_000))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled} {
		assert.True(t, ValidOrderStatus(s), s)
	}
	assert.False(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus(""))
}

func TestValidKYCLevel(t *testing.T) {
	for _, s := range []string{KYCLevel1, KYCPending, KYCLevel2, KYCRejected} {
		assert.True(t, ValidKYCLevel(s), s)
	}
	assert.False(t, ValidKYCLevel("LEVEL_3"))
}
