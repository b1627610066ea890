package services

import (
	"context"
	"strings"

	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderCreator creates gateway orders; satisfied by the razorpay-go Order resource.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type CheckoutRequest struct {
	UserID     string
	CenterID   string
	Plan       string
	ReferralID string
}

type CheckoutResult struct {
	OrderID     string          `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	AmountPaise int64           `json:"amount_paise"`
	Currency    string          `json:"currency"`
	Key         string          `json:"key"`
	Plan        string          `json:"plan"`
	CenterID    string          `json:"center_id"`
}

// CheckoutService opens gateway orders and the pending payments that track them.
type CheckoutService struct {
	db        *gorm.DB
	orders    OrderCreator
	keyID     string
	currency  string
	centers   *CenterService
	referrals *ReferralService
}

func NewCheckoutService(db *gorm.DB, orders OrderCreator, keyID, currency string) *CheckoutService {
	if currency == "" {
		currency = "INR"
	}
	return &CheckoutService{
		db:        db,
		orders:    orders,
		keyID:     keyID,
		currency:  currency,
		centers:   NewCenterService(db),
		referrals: NewReferralService(db),
	}
}

func (s *CheckoutService) CreateOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	center, err := s.centers.Get(ctx, req.CenterID)
	if err != nil {
		return nil, err
	}
	if !center.IsActive {
		return nil, utils.BadRequestError("Center is not accepting enrollments", nil)
	}

	amount, err := PlanAmount(center.Fee, req.Plan)
	if err != nil {
		return nil, err
	}

	var referralID *string
	if req.ReferralID != "" {
		referral, err := s.referrals.Pending(ctx, req.ReferralID)
		if err != nil {
			return nil, err
		}
		if referral.ReferrerUserID == req.UserID {
			return nil, ErrInvalidReferral
		}
		referralID = &referral.ID
	}

	notes := map[string]interface{}{
		"user_id":   req.UserID,
		"center_id": center.ID,
		"plan":      req.Plan,
	}
	if referralID != nil {
		notes["referral_id"] = *referralID
	}

	paise := ToPaise(amount)
	data := map[string]interface{}{
		"amount":          paise,
		"currency":        s.currency,
		"receipt":         "enr_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		"notes":           notes,
		"payment_capture": 1,
	}
	order, err := s.orders.Create(data, nil)
	if err != nil {
		metrics.IncPaymentOrder("failed")
		utils.LogError("Failed to create gateway order for user %s: %v", req.UserID, err)
		return nil, utils.InternalError("Failed to create payment order", err)
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		metrics.IncPaymentOrder("failed")
		return nil, utils.InternalError("Gateway returned an order without id", nil)
	}

	payment := models.Payment{
		OrderID:    orderID,
		Amount:     amount,
		Currency:   s.currency,
		Status:     models.PaymentPending,
		UserID:     req.UserID,
		CenterID:   center.ID,
		Plan:       req.Plan,
		ReferralID: referralID,
	}
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, errors.Wrap(err, "create payment")
	}
	metrics.IncPaymentOrder("created")
	utils.LogInfo("Order %s created for user %s, %s %s", orderID, req.UserID, amount.StringFixed(2), s.currency)

	return &CheckoutResult{
		OrderID:     orderID,
		Amount:      amount,
		AmountPaise: paise,
		Currency:    s.currency,
		Key:         s.keyID,
		Plan:        req.Plan,
		CenterID:    center.ID,
	}, nil
}
