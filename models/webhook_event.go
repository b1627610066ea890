package models

import (
	"time"

	"gorm.io/datatypes"
)

const ProviderRazorpay = "razorpay"

// WebhookEvent records delivered provider events so redeliveries are acknowledged once.
type WebhookEvent struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Provider        string         `gorm:"size:20;not null;uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	EventID         string         `gorm:"size:191;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"event_id"`
	EventType       string         `gorm:"size:100;index" json:"event_type"`
	Payload         datatypes.JSON `json:"-"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	ProcessingError string         `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
