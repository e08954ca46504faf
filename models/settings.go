// models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settings is the singleton platform configuration document maintained by
// admins.
type Settings struct {
	ID                    primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DepositWallet         DepositWallet      `json:"depositWallet" bson:"depositWallet"`
	Level1WithdrawalLimit float64            `json:"level1WithdrawalLimit" bson:"level1WithdrawalLimit"`
	MaintenanceMode       bool               `json:"maintenanceMode" bson:"maintenanceMode"`
	SupportEmail          string             `json:"supportEmail,omitempty" bson:"supportEmail,omitempty"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy             *primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

// DepositWallet is the account users are told to pay into; its reference is
// embedded in the QR payload returned with each deposit request.
type DepositWallet struct {
	Bank          string `json:"bank" bson:"bank"`
	AccountName   string `json:"accountName" bson:"accountName"`
	AccountNumber string `json:"accountNumber" bson:"accountNumber"`
}

type UpdateSettingsRequest struct {
	DepositWallet         *DepositWallet `json:"depositWallet,omitempty"`
	Level1WithdrawalLimit *float64       `json:"level1WithdrawalLimit,omitempty"`
	MaintenanceMode       *bool          `json:"maintenanceMode,omitempty"`
	SupportEmail          *string        `json:"supportEmail,omitempty"`
}
