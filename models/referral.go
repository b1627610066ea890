package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralStatus string

const (
	ReferralPending ReferralStatus = "pending"
	ReferralPaid    ReferralStatus = "paid"
)

// Referral moves pending -> paid once, when the gateway reports the referred payment captured.
type Referral struct {
	ID             string         `gorm:"primaryKey;size:64" json:"id"`
	Code           string         `gorm:"uniqueIndex;size:16;not null" json:"code"`
	ReferrerUserID string         `gorm:"size:64;index;not null" json:"referrer_user_id"`
	ReferredEmail  string         `gorm:"size:255" json:"referred_email"`
	Status         ReferralStatus `gorm:"size:16;index;not null;default:'pending'" json:"status"`
	PaymentID      string         `gorm:"size:64" json:"payment_id,omitempty"`
	PaidAt         *time.Time     `json:"paid_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
