package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const maxReferralCodeAttempts = 5

// ReferralPaidEvent is published when a referral first moves to paid
type ReferralPaidEvent struct {
	ReferralID     string `json:"referral_id"`
	ReferrerUserID string `json:"referrer_user_id"`
	PaymentID      string `json:"payment_id"`
}

type ReferralService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db, validate: validator.New()}
}

// Create issues a pending referral with a fresh code for referrerID
func (s *ReferralService) Create(ctx context.Context, referrerID, referredEmail string) (*models.Referral, error) {
	referredEmail = strings.ToLower(strings.TrimSpace(referredEmail))
	if referredEmail != "" {
		if err := s.validate.Var(referredEmail, "email"); err != nil {
			return nil, utils.BadRequestError("Invalid referred_email", err)
		}
	}

	db := s.db.WithContext(ctx)
	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxReferralCodeAttempts {
			return nil, errors.New("could not generate a unique referral code")
		}
		candidate, err := utils.GenerateReferralCode()
		if err != nil {
			return nil, errors.Wrap(err, "generate referral code")
		}
		var count int64
		if err := db.Model(&models.Referral{}).Where("code = ?", candidate).Count(&count).Error; err != nil {
			return nil, errors.Wrap(err, "check referral code")
		}
		if count == 0 {
			code = candidate
			break
		}
	}

	referral := models.Referral{
		Code:           code,
		ReferrerUserID: referrerID,
		ReferredEmail:  referredEmail,
		Status:         models.ReferralPending,
	}
	if err := db.Create(&referral).Error; err != nil {
		return nil, errors.Wrap(err, "create referral")
	}
	utils.LogInfo("Referral %s created by user %s", referral.Code, referrerID)
	return &referral, nil
}

// ListByReferrer returns the referrals userID has issued
func (s *ReferralService) ListByReferrer(ctx context.Context, userID string) ([]models.Referral, error) {
	var referrals []models.Referral
	err := s.db.WithContext(ctx).Where("referrer_user_id = ?", userID).Order("created_at DESC").Find(&referrals).Error
	return referrals, errors.Wrap(err, "list referrals")
}

// Pending loads a referral usable at checkout
func (s *ReferralService) Pending(ctx context.Context, id string) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidReferral
	}
	if err != nil {
		return nil, errors.Wrap(err, "load referral")
	}
	if referral.Status != models.ReferralPending {
		return nil, ErrInvalidReferral
	}
	return &referral, nil
}

type referralOutcome int

const (
	referralMarkedPaid referralOutcome = iota
	referralAlreadyPaid
	referralMissing
)

// markReferralPaid moves a referral from pending to paid. Paid referrals are never reverted.
func markReferralPaid(tx *gorm.DB, id, paymentID string, now time.Time) (referralOutcome, *models.Referral, error) {
	res := tx.Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, models.ReferralPending).
		Updates(map[string]interface{}{
			"status":     models.ReferralPaid,
			"payment_id": paymentID,
			"paid_at":    now,
		})
	if res.Error != nil {
		return 0, nil, errors.Wrap(res.Error, "mark referral paid")
	}

	var referral models.Referral
	err := tx.Where("id = ?", id).First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return referralMissing, nil, nil
	}
	if err != nil {
		return 0, nil, errors.Wrap(err, "load referral")
	}
	if res.RowsAffected == 0 {
		return referralAlreadyPaid, &referral, nil
	}
	return referralMarkedPaid, &referral, nil
}
