package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/controllers"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	paymentSecret = "rzp_route_secret"
	webhookSecret = "rzp_webhook_secret"
)

type stubOrders struct{}

func (stubOrders) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	return map[string]interface{}{"id": "order_stub"}, nil
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	return setupWith(t, nil)
}

func setupWith(t *testing.T, configure func(*config.Config)) (*gin.Engine, *gorm.DB) {
	h, db := newHandler(t, configure)
	return SetupRouter(h), db
}

func newHandler(t *testing.T, configure func(*config.Config)) (*controllers.Handler, *gorm.DB) {
	db := utils.TestSetup(t)
	cfg := &config.Config{
		JWTSecret:             utils.TestJWTSecret,
		RazorpayKey:           "rzp_key",
		RazorpaySecret:        paymentSecret,
		RazorpayWebhookSecret: webhookSecret,
		Currency:              "INR",
		TypeformRefs: config.TypeformRefs{
			Name: "name", Email: "email", Phone: "phone", District: "district",
		},
		NotificationBatchSize: 1000,
	}
	if configure != nil {
		configure(cfg)
	}

	notifications := services.NewNotificationService(db, cfg.NotificationBatchSize)
	h := &controllers.Handler{
		Config:        cfg,
		DB:            db,
		Checkout:      services.NewCheckoutService(db, stubOrders{}, cfg.RazorpayKey, cfg.Currency),
		Enrollments:   services.NewEnrollmentService(db, cfg.RazorpaySecret).WithNotifier(notifications),
		Webhooks:      services.NewWebhookService(db),
		Enquiries:     services.NewEnquiryService(db, cfg.TypeformRefs),
		Notifications: notifications,
		Referrals:     services.NewReferralService(db),
		Centers:       services.NewCenterService(db),
		Invoices:      services.NewInvoiceService(db),
	}
	return h, db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestGatedEndpointsAllowOnlyPost(t *testing.T) {
	router, _ := setup(t)
	for _, path := range []string{
		"/api/payments/verify",
		"/api/webhooks/razorpay",
		"/api/webhooks/typeform",
		"/api/notifications/send",
	} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: method, Path: path})
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", method, path)
			assert.Equal(t, "POST", resp.Header.Get("Allow"), "%s %s", method, path)
		}

		preflight := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodOptions, Path: path})
		assert.Equal(t, http.StatusNoContent, preflight.StatusCode, "OPTIONS %s", path)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := setup(t)
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodGet, Path: "/healthz"})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func TestCheckoutAndVerifyFlow(t *testing.T) {
	router, db := setup(t)
	center := utils.CreateTestCenter(t, db, "12000.00")
	utils.CreateTestProfile(t, db, "student-1")
	auth := utils.BearerHeader(utils.GetTestToken(t, "student-1", models.RoleStudent))

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/payments/order",
		Body:    map[string]string{"center_id": center.ID, "plan": "emi_6"},
		Headers: auth,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Raw))
	data := resp.Body["data"].(map[string]interface{})
	assert.Equal(t, "order_stub", data["order_id"])
	assert.EqualValues(t, 200000, data["amount"])

	verify := map[string]string{
		"razorpay_order_id":   "order_stub",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  utils.PaymentSignature(paymentSecret, "order_stub", "pay_1"),
	}

	tampered := map[string]string{}
	for k, v := range verify {
		tampered[k] = v
	}
	tampered["razorpay_signature"] = utils.PaymentSignature("guess", "order_stub", "pay_1")
	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: tampered, Headers: auth})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, count(t, db, &models.Enrollment{}))

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: verify, Headers: auth})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{
		"enrollment_status": "active",
		"replayed":          false,
	})
	enrollmentID := resp.Body["enrollment_id"]

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: verify, Headers: auth})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"replayed":      true,
	})
	assert.EqualValues(t, 1, count(t, db, &models.Enrollment{}))

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodGet, Path: "/api/payments/order_stub/invoice", Headers: auth})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestVerifyAuthorization(t *testing.T) {
	router, _ := setup(t)
	body := map[string]string{
		"razorpay_order_id":   "order_x",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature":  "sig",
		"user_id":             "someone-else",
	}

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: body})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	student := utils.BearerHeader(utils.GetTestToken(t, "student-1", models.RoleStudent))
	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: body, Headers: student})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/payments/verify", Body: map[string]string{}, Headers: student})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func razorpayRequest(body []byte, signature, eventID string) utils.TestRequest {
	headers := map[string]string{}
	if signature != "" {
		headers[utils.RazorpaySignatureHeader] = signature
	}
	if eventID != "" {
		headers[utils.RazorpayEventIDHeader] = eventID
	}
	return utils.TestRequest{Method: http.MethodPost, Path: "/api/webhooks/razorpay", RawBody: body, Headers: headers}
}

func TestRazorpayWebhook(t *testing.T) {
	router, db := setup(t)
	referral := &models.Referral{Code: "REFCODE2", ReferrerUserID: "referrer"}
	require.NoError(t, db.Create(referral).Error)

	body := []byte(fmt.Sprintf(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","notes":{"referral_id":%q}}}}}`, referral.ID))

	t.Run("missing signature", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, router, razorpayRequest(body, "", "evt_1"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid signature", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, router, razorpayRequest(body, utils.ComputeSignature("wrong", body), "evt_1"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var got models.Referral
	require.NoError(t, db.First(&got, "id = ?", referral.ID).Error)
	assert.Equal(t, models.ReferralPending, got.Status)
	assert.Zero(t, count(t, db, &models.WebhookEvent{}))

	resp := utils.MakeTestRequest(t, router, razorpayRequest(body, utils.ComputeSignature(webhookSecret, body), "evt_1"))
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"received": true})
	require.NoError(t, db.First(&got, "id = ?", referral.ID).Error)
	assert.Equal(t, models.ReferralPaid, got.Status)

	resp = utils.MakeTestRequest(t, router, razorpayRequest(body, utils.ComputeSignature(webhookSecret, body), "evt_1"))
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"received": true, "duplicate": true})
}

func TestRazorpayWebhookWithoutReferral(t *testing.T) {
	router, db := setup(t)
	referral := &models.Referral{Code: "REFCODE3", ReferrerUserID: "referrer"}
	require.NoError(t, db.Create(referral).Error)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_2","notes":[]}}}}`)
	resp := utils.MakeTestRequest(t, router, razorpayRequest(body, utils.ComputeSignature(webhookSecret, body), ""))
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"received": true})

	var got models.Referral
	require.NoError(t, db.First(&got, "id = ?", referral.ID).Error)
	assert.Equal(t, models.ReferralPending, got.Status)
}

func TestTypeformWebhook(t *testing.T) {
	router, db := setup(t)
	payload := func(withDistrict bool) []byte {
		district := ""
		if withDistrict {
			district = `,{"type":"text","text":"Thrissur","field":{"ref":"district"}}`
		}
		return []byte(`{"event_type":"form_response","form_response":{"form_id":"f1","token":"tok","answers":[` +
			`{"type":"text","text":"Ravi","field":{"ref":"name"}},` +
			`{"type":"email","email":"ravi@example.com","field":{"ref":"email"}},` +
			`{"type":"phone_number","phone_number":"+919000000000","field":{"ref":"phone"}}` +
			district + `]}}`)
	}

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/webhooks/typeform", RawBody: payload(false)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, count(t, db, &models.Enquiry{}))

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/webhooks/typeform", RawBody: payload(true)})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"message": "Enquiry recorded"})

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/webhooks/typeform", RawBody: payload(true)})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"message": "Enquiry already recorded"})
	assert.EqualValues(t, 1, count(t, db, &models.Enquiry{}))
}

func TestTypeformWebhookSecret(t *testing.T) {
	router, _ := setupWith(t, func(cfg *config.Config) {
		cfg.TypeformSecret = "tf-secret"
	})

	body := []byte(`{"form_response":{"answers":[]}}`)
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/webhooks/typeform", RawBody: body})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/webhooks/typeform",
		RawBody: body,
		Headers: map[string]string{utils.TypeformSignatureHeader: "tf-secret"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "authenticated but missing fields")
}

func TestSendNotification(t *testing.T) {
	router, db := setup(t)
	for i := 0; i < 3; i++ {
		utils.CreateTestProfile(t, db, fmt.Sprintf("student-%d", i))
	}
	body := map[string]interface{}{"send_to_all": true, "title": "Welcome", "message": "Term starts Monday"}

	student := utils.BearerHeader(utils.GetTestToken(t, "student-0", models.RoleStudent))
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/notifications/send", Body: body, Headers: student})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := utils.BearerHeader(utils.GetTestToken(t, "admin-1", models.RoleAdmin))
	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/notifications/send", Body: body, Headers: admin})
	utils.AssertResponse(t, resp, http.StatusOK, map[string]interface{}{"success": true})
	assert.EqualValues(t, 3, resp.Body["recipients"])

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/notifications/send",
		Body:    map[string]interface{}{"send_to_all": true, "user_ids": []string{"x"}, "title": "t", "message": "m"},
		Headers: admin,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodGet, Path: "/api/notifications?unread=true", Headers: student})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := resp.Body["data"].(map[string]interface{})
	assert.Len(t, data["notifications"], 1)

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/api/notifications/read-all", Headers: student})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, resp.Body["data"].(map[string]interface{})["updated"])
}

// failingStore inserts through db until the call numbered failAt.
type failingStore struct {
	db     *gorm.DB
	calls  int
	failAt int
}

func (s *failingStore) InsertBatch(ctx context.Context, batch []models.Notification) error {
	s.calls++
	if s.calls == s.failAt {
		return errors.New("batch limit exceeded")
	}
	return s.db.WithContext(ctx).Create(&batch).Error
}

func TestSendNotificationReportsPartialDelivery(t *testing.T) {
	h, db := newHandler(t, nil)
	for i := 0; i < 5; i++ {
		utils.CreateTestProfile(t, db, fmt.Sprintf("student-%d", i))
	}
	h.Notifications = services.NewNotificationService(db, 2).WithStore(&failingStore{db: db, failAt: 2})
	router := SetupRouter(h)

	admin := utils.BearerHeader(utils.GetTestToken(t, "admin-1", models.RoleAdmin))
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/notifications/send",
		Body:    map[string]interface{}{"send_to_all": true, "title": "Fees due", "message": "Pay by Friday"},
		Headers: admin,
	})
	utils.AssertResponse(t, resp, http.StatusInternalServerError, map[string]interface{}{"success": false})
	assert.EqualValues(t, 2, resp.Body["recipients"])
	assert.Contains(t, resp.Body["error"], "batch limit exceeded")
	assert.EqualValues(t, 2, count(t, db, &models.Notification{}))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	router, _ := setup(t)
	student := utils.BearerHeader(utils.GetTestToken(t, "student-1", models.RoleStudent))
	admin := utils.BearerHeader(utils.GetTestToken(t, "admin-1", models.RoleAdmin))

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodGet, Path: "/api/admin/enquiries", Headers: student})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/admin/centers",
		Body:    map[string]interface{}{"name": "Gamma", "city": "Goa", "fee": "7500"},
		Headers: admin,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Raw))

	resp = utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodGet, Path: "/api/admin/centers", Headers: admin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, resp.Body["pagination"].(map[string]interface{})["total"])
}
