// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KYC levels
const (
	KYCLevel1   = "LEVEL_1"
	KYCPending  = "PENDING"
	KYCLevel2   = "LEVEL_2"
	KYCRejected = "REJECTED"
)

// User model
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password,omitempty" bson:"password"`
	FullName  string             `json:"fullName" bson:"fullName"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	UserType  string             `json:"userType" bson:"userType"` // "user", "admin"
	IsActive  bool               `json:"isActive" bson:"isActive"`
	Wallet    Wallet             `json:"wallet" bson:"wallet"`
	Portfolio Portfolio          `json:"portfolio" bson:"portfolio"`
	KYC       KYCInfo            `json:"kyc" bson:"kyc"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Wallet is the cached balance projection on the user document. The
// transactions collection is the authoritative ledger; every balance change
// appends a ledger row before the projection is adjusted.
type Wallet struct {
	Balance  float64 `json:"balance" bson:"balance"`
	Currency string  `json:"currency" bson:"currency"`
}

type Portfolio struct {
	TotalCost       float64 `json:"totalCost" bson:"totalCost"`
	TotalProfitLoss float64 `json:"totalProfitLoss" bson:"totalProfitLoss"`
}

// KYCInfo holds the verification tier and the uploaded document URLs.
type KYCInfo struct {
	Level      string              `json:"level" bson:"level"` // LEVEL_1, PENDING, LEVEL_2, REJECTED
	Documents  []KYCDocument       `json:"documents,omitempty" bson:"documents,omitempty"`
	Note       string              `json:"note,omitempty" bson:"note,omitempty"`
	ReviewedAt *time.Time          `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewedBy *primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
}

type KYCDocument struct {
	Type       string    `json:"type" bson:"type"` // "id_front", "id_back", "selfie", "proof_of_address"
	URL        string    `json:"url" bson:"url"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// Auth request models
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// FinancialOverrideRequest is the admin request to set wallet/portfolio
// figures directly.
type FinancialOverrideRequest struct {
	Balance         *float64 `json:"balance,omitempty"`
	TotalCost       *float64 `json:"totalCost,omitempty"`
	TotalProfitLoss *float64 `json:"totalProfitLoss,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// Response is the envelope returned by every handler.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidKYCLevel reports whether s is one of the known verification tiers.
func ValidKYCLevel(s string) bool {
	switch s {
	case KYCLevel1, KYCPending, KYCLevel2, KYCRejected:
		return true
	}
	return false
}
