package models

import "time"

const (
	RoleStudent = "student"
	RoleCenter  = "center"
	RoleAdmin   = "admin"

	PlanFree = "free"
)

// Profile is the application-side record of a user of the hosted auth service.
// ID is the auth subject.
type Profile struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	Email            string    `gorm:"size:255;index" json:"email"`
	FullName         string    `gorm:"size:160" json:"full_name"`
	Phone            string    `gorm:"size:32" json:"phone"`
	City             string    `gorm:"size:100;index" json:"city"`
	Role             string    `gorm:"size:32;default:'student'" json:"role"`
	SubscriptionPlan string    `gorm:"size:32;index;default:'free'" json:"subscription_plan"`
	CenterID         *string   `gorm:"size:64;index" json:"center_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
