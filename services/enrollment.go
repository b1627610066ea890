package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ConfirmRequest is a checkout confirmation sent back by the client after the gateway popup closes.
type ConfirmRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	UserID    string
	CenterID  string
	Plan      string
}

// ConfirmResult is the enrollment backing a confirmed payment.
// Replayed is set when the payment had already been confirmed by an earlier call.
type ConfirmResult struct {
	Enrollment *models.Enrollment
	Payment    *models.Payment
	Center     *models.Center
	Profile    *models.Profile
	Replayed   bool
}

// EnrollmentConfirmedEvent is published after a confirmation commits
type EnrollmentConfirmedEvent struct {
	EnrollmentID uint   `json:"enrollment_id"`
	OrderID      string `json:"order_id"`
	PaymentID    string `json:"payment_id"`
	UserID       string `json:"user_id"`
	CenterID     string `json:"center_id"`
	Plan         string `json:"plan"`
	Amount       string `json:"amount"`
}

// EnrollmentService turns verified payments into enrollments.
type EnrollmentService struct {
	db       *gorm.DB
	secret   string
	locker   Locker
	lockTTL  time.Duration
	notifier *NotificationService
	mailer   utils.Mailer
	events   EventPublisher
	now      func() time.Time
}

func NewEnrollmentService(db *gorm.DB, secret string) *EnrollmentService {
	return &EnrollmentService{
		db:      db,
		secret:  secret,
		lockTTL: 30 * time.Second,
		events:  NoopPublisher{},
		now:     time.Now,
	}
}

func (s *EnrollmentService) WithLocker(locker Locker, ttl time.Duration) *EnrollmentService {
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

func (s *EnrollmentService) WithNotifier(notifier *NotificationService) *EnrollmentService {
	s.notifier = notifier
	return s
}

func (s *EnrollmentService) WithMailer(mailer utils.Mailer) *EnrollmentService {
	s.mailer = mailer
	return s
}

func (s *EnrollmentService) WithEvents(events EventPublisher) *EnrollmentService {
	if events != nil {
		s.events = events
	}
	return s
}

// Confirm verifies the checkout signature and, in one transaction, completes the
// payment, creates the enrollment and moves the student's profile onto the plan.
// Confirming an already completed payment returns its enrollment without writing.
func (s *EnrollmentService) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if !utils.VerifyPaymentSignature(s.secret, req.OrderID, req.PaymentID, req.Signature) {
		utils.LogError("Payment signature mismatch for order %s", req.OrderID)
		return nil, ErrInvalidSignature
	}

	if s.locker != nil {
		key := "lock:enroll:" + req.OrderID
		token, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				utils.LogError("Failed to release %s: %v", key, err)
			}
		}()
	}

	result := &ConfirmResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.confirmTx(tx, req, result)
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		utils.LogInfo("Payment %s already confirmed, returning enrollment %d", req.OrderID, result.Enrollment.ID)
		return result, nil
	}

	utils.LogInfo("Enrollment %d created for user %s at center %s", result.Enrollment.ID, req.UserID, result.Center.ID)
	s.afterConfirm(ctx, result)
	return result, nil
}

func (s *EnrollmentService) confirmTx(tx *gorm.DB, req ConfirmRequest, result *ConfirmResult) error {
	now := s.now()

	var payment models.Payment
	if err := tx.Where("order_id = ?", req.OrderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return errors.Wrap(err, "load payment")
	}
	if payment.UserID != "" && payment.UserID != req.UserID {
		return ErrPaymentOwnership
	}

	centerID, plan := req.CenterID, req.Plan
	if centerID == "" {
		centerID = payment.CenterID
	}
	if plan == "" {
		plan = payment.Plan
	}
	if centerID == "" || plan == "" {
		return utils.BadRequestError("center_id and plan are required", nil)
	}
	if (payment.CenterID != "" && payment.CenterID != centerID) || (payment.Plan != "" && payment.Plan != plan) {
		return ErrOrderMismatch
	}
	result.Payment = &payment

	res := tx.Model(&models.Payment{}).
		Where("order_id = ? AND status <> ?", req.OrderID, models.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":       models.PaymentCompleted,
			"payment_id":   req.PaymentID,
			"signature":    req.Signature,
			"completed_at": now,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "complete payment")
	}

	if res.RowsAffected == 0 {
		var existing models.Enrollment
		err := tx.Preload("Center").Where("payment_order_id = ?", req.OrderID).First(&existing).Error
		if err == nil {
			result.Enrollment = &existing
			result.Center = existing.Center
			result.Replayed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "load existing enrollment")
		}
		// Completed without an enrollment: finish the remaining writes.
		utils.LogWarn("Payment %s completed without an enrollment, creating it", req.OrderID)
	} else {
		payment.Status = models.PaymentCompleted
		payment.PaymentID = req.PaymentID
		payment.Signature = req.Signature
		payment.CompletedAt = &now
	}

	var center models.Center
	if err := tx.Where("id = ?", centerID).First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCenterNotFound
		}
		return errors.Wrap(err, "load center")
	}
	result.Center = &center

	enrollment := models.Enrollment{
		UserID:         req.UserID,
		CenterID:       center.ID,
		EmiPlan:        plan,
		Status:         models.EnrollmentActive,
		PaymentOrderID: req.OrderID,
		EnrolledAt:     now,
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		return errors.Wrap(err, "create enrollment")
	}
	result.Enrollment = &enrollment

	var profile models.Profile
	if err := tx.Where("id = ?", req.UserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, "load profile")
	}
	err := tx.Model(&profile).Updates(map[string]interface{}{
		"subscription_plan": plan,
		"center_id":         center.ID,
	}).Error
	if err != nil {
		return errors.Wrap(err, "update profile plan")
	}
	profile.SubscriptionPlan = plan
	profile.CenterID = &center.ID
	result.Profile = &profile
	return nil
}

// afterConfirm runs the side effects of a new enrollment. Failures are logged only.
func (s *EnrollmentService) afterConfirm(ctx context.Context, result *ConfirmResult) {
	enrollment, center := result.Enrollment, result.Center
	metrics.IncEnrollment(enrollment.EmiPlan)

	studentName := enrollment.UserID
	if result.Profile != nil && result.Profile.FullName != "" {
		studentName = result.Profile.FullName
	}

	if s.notifier != nil && center.OwnerUserID != "" {
		message := fmt.Sprintf("%s enrolled on the %s plan.", studentName, enrollment.EmiPlan)
		if err := s.notifier.Notify(ctx, center.OwnerUserID, "New enrollment", message, models.NotificationSuccess); err != nil {
			utils.LogError("Failed to notify center %s owner: %v", center.ID, err)
		}
	}

	if s.mailer != nil && center.Email != "" {
		body := utils.EnrollmentEmailBody(center.Name, studentName, enrollment.EmiPlan)
		if err := s.mailer.Send(center.Email, "New enrollment at "+center.Name, body); err != nil {
			utils.LogError("Failed to email center %s: %v", center.ID, err)
		}
	}

	event := EnrollmentConfirmedEvent{
		EnrollmentID: enrollment.ID,
		OrderID:      enrollment.PaymentOrderID,
		UserID:       enrollment.UserID,
		CenterID:     enrollment.CenterID,
		Plan:         enrollment.EmiPlan,
	}
	if result.Payment != nil {
		event.PaymentID = result.Payment.PaymentID
		event.Amount = result.Payment.Amount.StringFixed(2)
	}
	publishAfterCommit(ctx, s.events, TopicEnrollmentConfirmed, enrollment.PaymentOrderID, event)
}

// ListForUser returns userID's enrollments with their centers
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).Preload("Center").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, errors.Wrap(err, "list enrollments")
}

// EnrollmentFilter narrows the admin enrollment listing
type EnrollmentFilter struct {
	Status   string
	CenterID string
}

func (s *EnrollmentService) filtered(ctx context.Context, f EnrollmentFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Enrollment{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CenterID != "" {
		query = query.Where("center_id = ?", f.CenterID)
	}
	return query
}

// ListAll returns one page of enrollments for administrators
func (s *EnrollmentService) ListAll(ctx context.Context, f EnrollmentFilter, p *utils.Pagination) ([]models.Enrollment, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count enrollments")
	}
	p.SetTotal(total)

	var enrollments []models.Enrollment
	err := s.filtered(ctx, f).Preload("Center").
		Order("enrolled_at DESC, id DESC").
		Scopes(p.Scope).
		Find(&enrollments).Error
	return enrollments, errors.Wrap(err, "list enrollments")
}

// ExportAll returns every enrollment matching f for the spreadsheet export
func (s *EnrollmentService) ExportAll(ctx context.Context, f EnrollmentFilter) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.filtered(ctx, f).Preload("Center").Order("enrolled_at DESC, id DESC").Find(&enrollments).Error
	return enrollments, errors.Wrap(err, "export enrollments")
}
