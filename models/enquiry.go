package models

import (
	"time"

	"gorm.io/datatypes"
)

const EnquirySourceTypeform = "typeform"

// Enquiry is a prospective student's contact request captured from a form provider.
type Enquiry struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"size:160;not null"`
	Email         string         `json:"email" gorm:"size:255;not null"`
	Phone         string         `json:"phone" gorm:"size:32;not null"`
	District      string         `json:"district" gorm:"size:100;not null"`
	Course        string         `json:"course,omitempty" gorm:"size:160"`
	Message       string         `json:"message,omitempty" gorm:"type:text"`
	Source        string         `json:"source" gorm:"size:32"`
	FormID        string         `json:"form_id,omitempty" gorm:"size:64"`
	ResponseToken *string        `json:"-" gorm:"uniqueIndex;size:128"`
	Payload       datatypes.JSON `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}
