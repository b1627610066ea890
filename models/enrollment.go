package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment ties a student to a center. PaymentOrderID is unique, so a payment
// can back at most one enrollment.
type Enrollment struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	UserID         string           `json:"user_id" gorm:"size:64;index;not null"`
	CenterID       string           `json:"center_id" gorm:"size:64;index;not null"`
	Center         *Center          `json:"center,omitempty" gorm:"foreignKey:CenterID"`
	EmiPlan        string           `json:"emi_plan" gorm:"size:32"`
	Status         EnrollmentStatus `json:"status" gorm:"size:16;index;not null;default:'active'"`
	PaymentOrderID string           `json:"payment_order_id" gorm:"uniqueIndex;size:64;not null"`
	EnrolledAt     time.Time        `json:"enrolled_at"`
	ExamDate       *time.Time       `json:"exam_date,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
