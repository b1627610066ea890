package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// NotificationStore persists one chunk of notification rows per call.
type NotificationStore interface {
	InsertBatch(ctx context.Context, batch []models.Notification) error
}

type gormNotificationStore struct {
	db *gorm.DB
}

func (s *gormNotificationStore) InsertBatch(ctx context.Context, batch []models.Notification) error {
	return s.db.WithContext(ctx).Create(&batch).Error
}

// TargetFilter selects recipients by attribute. Empty fields are ignored.
type TargetFilter struct {
	Plan             string `json:"plan"`
	City             string `json:"city"`
	EnrollmentStatus string `json:"enrollment_status"`
}

func (f *TargetFilter) empty() bool {
	return f == nil || (f.Plan == "" && f.City == "" && f.EnrollmentStatus == "")
}

// DispatchRequest describes one send. Exactly one of UserIDs, SendToAll or FilterBy is set.
type DispatchRequest struct {
	UserIDs   []string      `json:"user_ids"`
	SendToAll bool          `json:"send_to_all"`
	FilterBy  *TargetFilter `json:"filter_by"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Type      string        `json:"type"`
}

var notificationTypes = map[string]bool{
	models.NotificationInfo:         true,
	models.NotificationSuccess:      true,
	models.NotificationWarning:      true,
	models.NotificationAlert:        true,
	models.NotificationAnnouncement: true,
}

var enrollmentStatuses = map[string]bool{
	string(models.EnrollmentActive):    true,
	string(models.EnrollmentCompleted): true,
	string(models.EnrollmentCancelled): true,
}

// NotificationService fans notifications out to recipients and serves their inbox.
type NotificationService struct {
	db        *gorm.DB
	store     NotificationStore
	batchSize int
	now       func() time.Time
}

func NewNotificationService(db *gorm.DB, batchSize int) *NotificationService {
	if batchSize <= 0 {
		batchSize = utils.NotificationBatchLimit
	}
	return &NotificationService{
		db:        db,
		store:     &gormNotificationStore{db: db},
		batchSize: batchSize,
		now:       time.Now,
	}
}

// WithStore swaps the batch writer
func (s *NotificationService) WithStore(store NotificationStore) *NotificationService {
	s.store = store
	return s
}

func (s *NotificationService) validate(req *DispatchRequest) error {
	modes := 0
	if len(req.UserIDs) > 0 {
		modes++
	}
	if req.SendToAll {
		modes++
	}
	if req.FilterBy != nil {
		modes++
	}
	if modes != 1 {
		return ErrInvalidTarget
	}
	if req.FilterBy != nil {
		if req.FilterBy.empty() {
			return utils.BadRequestError("filter_by needs at least one of plan, city or enrollment_status", nil)
		}
		if req.FilterBy.EnrollmentStatus != "" && !enrollmentStatuses[req.FilterBy.EnrollmentStatus] {
			return utils.BadRequestError("Unknown enrollment_status "+req.FilterBy.EnrollmentStatus, nil)
		}
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		return utils.BadRequestError("Title and message are required", nil)
	}
	if req.Type == "" {
		req.Type = models.NotificationInfo
	}
	if !notificationTypes[req.Type] {
		return utils.BadRequestError("Unknown notification type "+req.Type, nil)
	}
	return nil
}

// ResolveTargets turns the targeting mode into a list of user ids.
func (s *NotificationService) ResolveTargets(ctx context.Context, req DispatchRequest) ([]string, error) {
	switch {
	case len(req.UserIDs) > 0:
		seen := make(map[string]bool, len(req.UserIDs))
		ids := make([]string, 0, len(req.UserIDs))
		for _, id := range req.UserIDs {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		return ids, nil

	case req.SendToAll:
		var ids []string
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Order("id").Pluck("id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "load all profiles")
		}
		return ids, nil

	case req.FilterBy != nil:
		query := s.db.WithContext(ctx).Model(&models.Profile{})
		if req.FilterBy.Plan != "" {
			query = query.Where("profiles.subscription_plan = ?", req.FilterBy.Plan)
		}
		if req.FilterBy.City != "" {
			query = query.Where("LOWER(profiles.city) = LOWER(?)", req.FilterBy.City)
		}
		if req.FilterBy.EnrollmentStatus != "" {
			enrolled := s.db.Model(&models.Enrollment{}).
				Select("1").
				Where("enrollments.user_id = profiles.id AND enrollments.status = ?", req.FilterBy.EnrollmentStatus)
			query = query.Where("EXISTS (?)", enrolled)
		}

		var ids []string
		if err := query.Order("profiles.id").Pluck("profiles.id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "resolve filtered recipients")
		}
		return ids, nil
	}
	return nil, ErrInvalidTarget
}

// Dispatch writes one notification per recipient in chunks of batchSize. A failed
// chunk stops the send; chunks already written stay and are counted in the result.
func (s *NotificationService) Dispatch(ctx context.Context, req DispatchRequest) (int, error) {
	if err := s.validate(&req); err != nil {
		return 0, err
	}

	recipients, err := s.ResolveTargets(ctx, req)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		utils.LogInfo("Notification %q matched no recipients", req.Title)
		return 0, nil
	}

	createdAt := s.now()
	inserted := 0
	for start := 0; start < len(recipients); start += s.batchSize {
		end := start + s.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		batch := make([]models.Notification, 0, end-start)
		for _, userID := range recipients[start:end] {
			batch = append(batch, models.Notification{
				UserID:    userID,
				Title:     req.Title,
				Message:   req.Message,
				Type:      req.Type,
				CreatedAt: createdAt,
			})
		}

		if err := s.store.InsertBatch(ctx, batch); err != nil {
			metrics.IncNotificationBatch("error")
			metrics.AddNotificationsSent(req.Type, inserted)
			utils.LogError("Notification batch %d-%d failed after %d inserted: %v", start, end, inserted, err)
			return inserted, errors.Wrapf(err, "insert notifications %d-%d", start, end)
		}
		metrics.IncNotificationBatch("ok")
		inserted += len(batch)
	}

	metrics.AddNotificationsSent(req.Type, inserted)
	utils.LogInfo("Notification %q sent to %d recipients", req.Title, inserted)
	return inserted, nil
}

// Notify sends a single notification to one user
func (s *NotificationService) Notify(ctx context.Context, userID, title, message, kind string) error {
	_, err := s.Dispatch(ctx, DispatchRequest{
		UserIDs: []string{userID},
		Title:   title,
		Message: message,
		Type:    kind,
	})
	return err
}

// List returns userID's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, p *utils.Pagination) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count notifications")
	}
	p.SetTotal(total)

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Scopes(p.Scope).Find(&notifications).Error; err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return notifications, nil
}

// UnreadCount returns how many of userID's notifications are unread
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, errors.Wrap(err, "count unread notifications")
}

// SetRead marks one of userID's notifications read or unread.
func (s *NotificationService) SetRead(ctx context.Context, userID string, id uint, read bool) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load notification")
	}

	if notification.Read != read {
		if err := s.db.WithContext(ctx).Model(&notification).Update("read", read).Error; err != nil {
			return nil, errors.Wrap(err, "update notification")
		}
		notification.Read = read
	}
	return &notification, nil
}

// MarkAllRead marks every unread notification of userID as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "mark notifications read")
	}
	return res.RowsAffected, nil
}
