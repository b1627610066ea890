package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RazorpayPaymentCaptured = "payment.captured"
	RazorpayPaymentFailed   = "payment.failed"
)

// Outcome of a webhook delivery
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
	WebhookUnlinked  = "unlinked"
)

// Notes holds Razorpay entity notes. The gateway sends an empty array
// instead of an object when no notes were set.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*n = Notes{}
		return nil
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	*n = out
	return nil
}

type RazorpayPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Email            string `json:"email"`
	Notes            Notes  `json:"notes"`
	ErrorDescription string `json:"error_description"`
}

type RazorpayOrderEntity struct {
	ID      string `json:"id"`
	Amount  int64  `json:"amount"`
	Receipt string `json:"receipt"`
	Status  string `json:"status"`
	Notes   Notes  `json:"notes"`
}

// RazorpayEvent is the webhook envelope
type RazorpayEvent struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	Payload   struct {
		Payment *struct {
			Entity RazorpayPaymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity RazorpayOrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ReferralID reads the referral from the payment notes, then the order notes.
func (e *RazorpayEvent) ReferralID() string {
	if p := e.Payload.Payment; p != nil && p.Entity.Notes["referral_id"] != "" {
		return p.Entity.Notes["referral_id"]
	}
	if o := e.Payload.Order; o != nil {
		return o.Entity.Notes["referral_id"]
	}
	return ""
}

// WebhookOutcome reports what a delivery changed
type WebhookOutcome struct {
	Event      string
	Status     string
	ReferralID string
}

// WebhookService applies verified Razorpay events.
type WebhookService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewWebhookService(db *gorm.DB) *WebhookService {
	return &WebhookService{db: db, events: NoopPublisher{}, now: time.Now}
}

func (s *WebhookService) WithEvents(events EventPublisher) *WebhookService {
	if events != nil {
		s.events = events
	}
	return s
}

// HandleRazorpay applies one delivery whose signature has already been checked.
// eventID may be empty, in which case the delivery is not deduplicated.
func (s *WebhookService) HandleRazorpay(ctx context.Context, eventID string, body []byte) (*WebhookOutcome, error) {
	var event RazorpayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.LogInfo("Malformed Razorpay payload: %v", err)
		return nil, ErrMalformedPayload
	}
	outcome := &WebhookOutcome{Event: event.Event}

	var paid *models.Referral
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.WebhookEvent
		seen := false
		if eventID != "" {
			err := tx.Where("provider = ? AND event_id = ?", models.ProviderRazorpay, eventID).First(&record).Error
			switch {
			case err == nil:
				if record.ProcessedAt != nil {
					outcome.Status = WebhookDuplicate
					return nil
				}
				seen = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return errors.Wrap(err, "load webhook event")
			}
		}

		var err error
		paid, err = s.apply(tx, &event, outcome)
		if err != nil {
			return err
		}
		if eventID == "" {
			return nil
		}

		processedAt := s.now()
		if seen {
			res := tx.Model(&models.WebhookEvent{}).
				Where("id = ? AND processed_at IS NULL", record.ID).
				Updates(map[string]interface{}{
					"processed_at":     processedAt,
					"processing_error": "",
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		}
		return tx.Create(&models.WebhookEvent{
			Provider:    models.ProviderRazorpay,
			EventID:     eventID,
			EventType:   event.Event,
			Payload:     datatypes.JSON(body),
			ProcessedAt: &processedAt,
		}).Error
	})
	if err != nil {
		if eventID != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.LogInfo("Razorpay event %s applied by a concurrent delivery", eventID)
			return &WebhookOutcome{Event: event.Event, Status: WebhookDuplicate}, nil
		}
		s.recordFailure(ctx, eventID, event.Event, body, err)
		return nil, err
	}

	if paid != nil {
		publishAfterCommit(ctx, s.events, TopicReferralPaid, paid.ID, ReferralPaidEvent{
			ReferralID:     paid.ID,
			ReferrerUserID: paid.ReferrerUserID,
			PaymentID:      paid.PaymentID,
		})
	}
	return outcome, nil
}

func (s *WebhookService) apply(tx *gorm.DB, event *RazorpayEvent, outcome *WebhookOutcome) (*models.Referral, error) {
	switch event.Event {
	case RazorpayPaymentCaptured:
		referralID := event.ReferralID()
		outcome.ReferralID = referralID
		if referralID == "" {
			utils.LogInfo("Captured payment carries no referral id")
			outcome.Status = WebhookUnlinked
			return nil, nil
		}

		var paymentID string
		if event.Payload.Payment != nil {
			paymentID = event.Payload.Payment.Entity.ID
		}
		result, referral, err := markReferralPaid(tx, referralID, paymentID, s.now())
		if err != nil {
			return nil, err
		}
		switch result {
		case referralMissing:
			utils.LogError("Captured payment %s references unknown referral %s", paymentID, referralID)
			outcome.Status = WebhookUnlinked
			return nil, nil
		case referralAlreadyPaid:
			utils.LogInfo("Referral %s already paid", referralID)
			outcome.Status = WebhookProcessed
			return nil, nil
		}
		utils.LogInfo("Referral %s marked paid by payment %s", referralID, paymentID)
		outcome.Status = WebhookProcessed
		return referral, nil

	case RazorpayPaymentFailed:
		if event.Payload.Payment == nil || event.Payload.Payment.Entity.OrderID == "" {
			outcome.Status = WebhookIgnored
			return nil, nil
		}
		entity := event.Payload.Payment.Entity
		res := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", entity.OrderID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":     models.PaymentFailed,
				"payment_id": entity.ID,
			})
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "mark payment failed")
		}
		utils.LogInfo("Payment for order %s failed: %s (%d rows)", entity.OrderID, entity.ErrorDescription, res.RowsAffected)
		outcome.Status = WebhookProcessed
		return nil, nil
	}

	utils.LogDebug("Ignoring Razorpay event %s", event.Event)
	outcome.Status = WebhookIgnored
	return nil, nil
}

// recordFailure keeps the failed delivery unprocessed so a redelivery is applied again.
// A row already marked processed is left as is.
func (s *WebhookService) recordFailure(ctx context.Context, eventID, eventType string, body []byte, cause error) {
	if eventID == "" {
		return
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ? AND processed_at IS NULL", models.ProviderRazorpay, eventID).
		Update("processing_error", cause.Error())
	if res.Error == nil && res.RowsAffected > 0 {
		return
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.WebhookEvent{
		Provider:        models.ProviderRazorpay,
		EventID:         eventID,
		EventType:       eventType,
		Payload:         datatypes.JSON(body),
		ProcessingError: cause.Error(),
	}).Error
	if err != nil {
		utils.LogError("Failed to record webhook %s failure: %v", eventID, err)
	}
}
