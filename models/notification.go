package models

import "time"

const (
	NotificationInfo         = "info"
	NotificationSuccess      = "success"
	NotificationWarning      = "warning"
	NotificationAlert        = "alert"
	NotificationAnnouncement = "announcement"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:64;index;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Type      string    `json:"type" gorm:"size:32;not null;default:'info'"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}
