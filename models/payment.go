package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment mirrors one Razorpay order. It is created pending at checkout and only
// moves to completed after the confirmation signature checks out.
type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     string          `json:"order_id" gorm:"uniqueIndex;size:64;not null"`
	PaymentID   string          `json:"payment_id" gorm:"size:64"`
	Signature   string          `json:"-" gorm:"size:128"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency    string          `json:"currency" gorm:"size:8;default:'INR'"`
	Status      PaymentStatus   `json:"status" gorm:"size:16;index;not null;default:'pending'"`
	UserID      string          `json:"user_id" gorm:"size:64;index"`
	CenterID    string          `json:"center_id" gorm:"size:64"`
	Plan        string          `json:"plan" gorm:"size:32"`
	ReferralID  *string         `json:"referral_id,omitempty" gorm:"size:64"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
