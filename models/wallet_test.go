package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestPlanOverride(t *testing.T) {
	tests := []struct {
		name           string
		currentBalance float64
		req            FinancialOverrideRequest
		wantLedger     bool
		wantType       string
		wantAmount     float64
	}{
		{
			name:           "balance increase synthesizes a deposit row",
			currentBalance: 100,
			req:            FinancialOverrideRequest{Balance: floatPtr(250)},
			wantLedger:     true,
			wantType:       TxDeposit,
			wantAmount:     150,
		},
		{
			name:           "balance decrease synthesizes a withdrawal row",
			currentBalance: 500,
			req:            FinancialOverrideRequest{Balance: floatPtr(200)},
			wantLedger:     true,
			wantType:       TxWithdrawal,
			wantAmount:     300,
		},
		{
			name:           "unchanged balance writes no row",
			currentBalance: 100,
			req:            FinancialOverrideRequest{Balance: floatPtr(100)},
			wantLedger:     false,
		},
		{
			name:           "pure portfolio edit writes no row",
			currentBalance: 100,
			req: FinancialOverrideRequest{
				TotalCost:       floatPtr(4000),
				TotalProfitLoss: floatPtr(-120),
			},
			wantLedger: false,
		},
		{
			name:           "zero target balance still produces the delta",
			currentBalance: 75.5,
			req:            FinancialOverrideRequest{Balance: floatPtr(0)},
			wantLedger:     true,
			wantType:       TxWithdrawal,
			wantAmount:     75.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanOverride(tt.currentBalance, tt.req)

			assert.Equal(t, tt.wantLedger, plan.BalanceChanged())
			if tt.wantLedger {
				assert.Equal(t, tt.wantType, plan.LedgerType)
				assert.InDelta(t, tt.wantAmount, plan.LedgerAmount, 1e-9)
				assert.NotEmpty(t, plan.Description)
			} else {
				assert.Zero(t, plan.LedgerAmount)
			}
		})
	}
}

func TestPlanOverrideKeepsRequestedFields(t *testing.T) {
	req := FinancialOverrideRequest{
		Balance:   floatPtr(50),
		TotalCost: floatPtr(900),
		Reason:    "chargeback settlement",
	}

	plan := PlanOverride(50, req)

	assert.Equal(t, 50.0, *plan.SetBalance)
	assert.Equal(t, 900.0, *plan.SetTotalCost)
	assert.Nil(t, plan.SetTotalProfitLoss)
	assert.False(t, plan.BalanceChanged())
}

func TestPlanOverrideDescriptionIncludesReason(t *testing.T) {
	plan := PlanOverride(10, FinancialOverrideRequest{
		Balance: floatPtr(20),
		Reason:  "promo credit",
	})

	assert.Contains(t, plan.Description, "promo credit")
}

func TestWithdrawalAllowed(t *testing.T) {
	tests := []struct {
		name     string
		kycLevel string
		amount   float64
		limit    float64
		wantErr  bool
	}{
		{"level 2 has no cap", KYCLevel2, 1_000_000, 1000, false},
		{"level 1 under limit", KYCLevel1, 999, 1000, false},
		{"level 1 at limit", KYCLevel1, 1000, 1000, false},
		{"level 1 over limit", KYCLevel1, 1001, 1000, true},
		{"pending over limit", KYCPending, 5000, 1000, true},
		{"rejected over limit", KYCRejected, 5000, 1000, true},
		{"zero limit disables the gate", KYCLevel1, 1_000_000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithdrawalAllowed(tt.kycLevel, tt.amount, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
