package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Center is a training partner that students enroll with.
type Center struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	Name        string          `gorm:"size:160;not null" json:"name"`
	City        string          `gorm:"size:100;index" json:"city"`
	Email       string          `gorm:"size:255" json:"email"`
	OwnerUserID string          `gorm:"size:64;index" json:"owner_user_id"`
	Fee         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Center) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
