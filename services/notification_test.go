package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProfiles(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	profiles := make([]models.Profile, n)
	for i := range profiles {
		profiles[i] = models.Profile{
			ID:               fmt.Sprintf("user-%05d", i),
			Role:             models.RoleStudent,
			SubscriptionPlan: models.PlanFree,
		}
	}
	require.NoError(t, db.CreateInBatches(profiles, 500).Error)
}

func countNotifications(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	return n
}

func TestDispatchSendToAllChunks(t *testing.T) {
	db := utils.TestSetup(t)
	seedProfiles(t, db, 2500)

	svc := NewNotificationService(db, 1000)
	store := &recordingStore{next: &gormNotificationStore{db: db}, failAt: -1}
	svc.WithStore(store)

	sent, err := svc.Dispatch(context.Background(), DispatchRequest{
		SendToAll: true,
		Title:     "Exam schedule",
		Message:   "Exams start next week",
	})
	require.NoError(t, err)
	assert.Equal(t, 2500, sent)
	assert.Equal(t, []int{1000, 1000, 500}, store.sizes)
	assert.EqualValues(t, 2500, countNotifications(t, db))

	var sample models.Notification
	require.NoError(t, db.First(&sample).Error)
	assert.Equal(t, models.NotificationInfo, sample.Type, "type defaults to info")
	assert.False(t, sample.Read)
}

func TestDispatchChunkFailureKeepsEarlierChunks(t *testing.T) {
	db := utils.TestSetup(t)
	seedProfiles(t, db, 2500)

	store := &recordingStore{next: &gormNotificationStore{db: db}, failAt: 1}
	svc := NewNotificationService(db, 1000).WithStore(store)

	sent, err := svc.Dispatch(context.Background(), DispatchRequest{
		SendToAll: true,
		Title:     "Maintenance",
		Message:   "Down tonight",
		Type:      models.NotificationWarning,
	})
	require.ErrorIs(t, err, errBatchFailed)
	assert.Equal(t, 1000, sent)
	assert.Equal(t, []int{1000, 1000}, store.sizes, "no chunk attempted after the failure")
	assert.EqualValues(t, 1000, countNotifications(t, db))
}

func TestDispatchUserIDs(t *testing.T) {
	db := utils.TestSetup(t)
	svc := NewNotificationService(db, 0)

	sent, err := svc.Dispatch(context.Background(), DispatchRequest{
		UserIDs: []string{"a", "b", "a", " ", "c"},
		Title:   "Hello",
		Message: "World",
		Type:    models.NotificationAnnouncement,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.EqualValues(t, 3, countNotifications(t, db))
}

func TestDispatchFilter(t *testing.T) {
	db := utils.TestSetup(t)
	center := utils.CreateTestCenter(t, db, "12000")

	profiles := []models.Profile{
		{ID: "p1", City: "Kochi", SubscriptionPlan: PlanFull},
		{ID: "p2", City: "kochi", SubscriptionPlan: PlanEMI3},
		{ID: "p3", City: "Delhi", SubscriptionPlan: PlanFull},
		{ID: "p4", City: "Kochi", SubscriptionPlan: PlanFull},
	}
	require.NoError(t, db.Create(&profiles).Error)

	now := time.Now()
	enrollments := []models.Enrollment{
		{UserID: "p1", CenterID: center.ID, EmiPlan: PlanFull, Status: models.EnrollmentActive, PaymentOrderID: "o1", EnrolledAt: now},
		{UserID: "p2", CenterID: center.ID, EmiPlan: PlanEMI3, Status: models.EnrollmentActive, PaymentOrderID: "o2", EnrolledAt: now},
		{UserID: "p3", CenterID: center.ID, EmiPlan: PlanFull, Status: models.EnrollmentActive, PaymentOrderID: "o3", EnrolledAt: now},
		{UserID: "p4", CenterID: center.ID, EmiPlan: PlanFull, Status: models.EnrollmentCompleted, PaymentOrderID: "o4", EnrolledAt: now},
	}
	require.NoError(t, db.Create(&enrollments).Error)

	svc := NewNotificationService(db, 0)
	tests := []struct {
		name   string
		filter TargetFilter
		want   []string
	}{
		{"city is case-insensitive", TargetFilter{City: "KOCHI"}, []string{"p1", "p2", "p4"}},
		{"plan", TargetFilter{Plan: PlanFull}, []string{"p1", "p3", "p4"}},
		{"enrollment status", TargetFilter{EnrollmentStatus: "completed"}, []string{"p4"}},
		{"combined", TargetFilter{Plan: PlanFull, City: "Kochi", EnrollmentStatus: "active"}, []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			ids, err := svc.ResolveTargets(context.Background(), DispatchRequest{FilterBy: &filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDispatchValidation(t *testing.T) {
	db := utils.TestSetup(t)
	svc := NewNotificationService(db, 0)

	tests := []struct {
		name string
		req  DispatchRequest
	}{
		{"no targeting", DispatchRequest{Title: "t", Message: "m"}},
		{"two targeting modes", DispatchRequest{UserIDs: []string{"a"}, SendToAll: true, Title: "t", Message: "m"}},
		{"empty filter", DispatchRequest{FilterBy: &TargetFilter{}, Title: "t", Message: "m"}},
		{"unknown enrollment status", DispatchRequest{FilterBy: &TargetFilter{EnrollmentStatus: "paused"}, Title: "t", Message: "m"}},
		{"missing title", DispatchRequest{UserIDs: []string{"a"}, Message: "m"}},
		{"blank message", DispatchRequest{UserIDs: []string{"a"}, Title: "t", Message: "   "}},
		{"unknown type", DispatchRequest{UserIDs: []string{"a"}, Title: "t", Message: "m", Type: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent, err := svc.Dispatch(context.Background(), tt.req)
			assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))
			assert.Zero(t, sent)
		})
	}
	assert.Zero(t, countNotifications(t, db))
}

func TestRecipientInbox(t *testing.T) {
	db := utils.TestSetup(t)
	svc := NewNotificationService(db, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, "me", fmt.Sprintf("n%d", i), "body", models.NotificationInfo))
	}
	require.NoError(t, svc.Notify(ctx, "someone-else", "other", "body", models.NotificationInfo))

	page := &utils.Pagination{Page: 1, Limit: 2}
	list, err := svc.List(ctx, "me", false, page)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.LastPage)

	updated, err := svc.SetRead(ctx, "me", list[0].ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	unread, err := svc.UnreadCount(ctx, "me")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	_, err = svc.SetRead(ctx, "someone-else", list[0].ID, false)
	assert.ErrorIs(t, err, ErrNotificationNotFound, "cannot touch another user's notification")

	marked, err := svc.MarkAllRead(ctx, "me")
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	onlyUnread, err := svc.List(ctx, "me", true, &utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, onlyUnread)

	otherUnread, err := svc.UnreadCount(ctx, "someone-else")
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherUnread)
}
