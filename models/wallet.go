// models/wallet.go
//
// Pure decision helpers for wallet mutations. Handlers translate these plans
// into database writes; keeping the arithmetic here means the ledger rules
// can be tested without a running MongoDB.
package models

import "fmt"

// OverridePlan is the computed effect of an admin financial override.
type OverridePlan struct {
	SetBalance         *float64
	SetTotalCost       *float64
	SetTotalProfitLoss *float64
	// LedgerType/LedgerAmount describe the single synthesized ledger row.
	// LedgerAmount is zero when the balance did not change, in which case no
	// row is written (pure bookkeeping edits to cost/profit fields must not
	// produce phantom transactions).
	LedgerType   string
	LedgerAmount float64
	Description  string
}

// BalanceChanged reports whether the override needs a ledger row.
func (p OverridePlan) BalanceChanged() bool {
	return p.LedgerAmount != 0
}

// PlanOverride computes the effect of applying req to a user whose current
// wallet balance is currentBalance.
func PlanOverride(currentBalance float64, req FinancialOverrideRequest) OverridePlan {
	plan := OverridePlan{
		SetBalance:         req.Balance,
		SetTotalCost:       req.TotalCost,
		SetTotalProfitLoss: req.TotalProfitLoss,
	}

	if req.Balance != nil && *req.Balance != currentBalance {
		delta := *req.Balance - currentBalance
		if delta > 0 {
			plan.LedgerType = TxDeposit
			plan.LedgerAmount = delta
		} else {
			plan.LedgerType = TxWithdrawal
			plan.LedgerAmount = -delta
		}
		plan.Description = "Admin balance adjustment"
		if req.Reason != "" {
			plan.Description = fmt.Sprintf("Admin balance adjustment: %s", req.Reason)
		}
	}
	return plan
}

// WithdrawalAllowed applies the KYC withdrawal gate. LEVEL_2 users have no
// per-request cap; everyone else is limited to level1Limit (a non-positive
// limit disables the gate).
func WithdrawalAllowed(kycLevel string, amount, level1Limit float64) error {
	if kycLevel == KYCLevel2 {
		return nil
	}
	if level1Limit > 0 && amount > level1Limit {
		return fmt.Errorf("withdrawals above %.2f require identity verification", level1Limit)
	}
	return nil
}
