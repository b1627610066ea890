package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const TestJWTSecret = "test-jwt-secret"

// TestSetup opens an isolated in-memory database with every table migrated
func TestSetup(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db), "migrate test database")
	config.DB = db

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestProfile creates a student profile with id
func CreateTestProfile(t *testing.T, db *gorm.DB, id string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:               id,
		Email:            id + "@example.com",
		FullName:         "Test " + id,
		City:             "Kochi",
		Role:             models.RoleStudent,
		SubscriptionPlan: models.PlanFree,
	}
	require.NoError(t, db.Create(profile).Error, "create test profile")
	return profile
}

// CreateTestCenter creates an active center with the given fee
func CreateTestCenter(t *testing.T, db *gorm.DB, fee string) *models.Center {
	t.Helper()
	center := &models.Center{
		Name:        "Test Center",
		City:        "Kochi",
		Email:       "center@example.com",
		OwnerUserID: "center-owner",
		Fee:         decimal.RequireFromString(fee),
		IsActive:    true,
	}
	require.NoError(t, db.Create(center).Error, "create test center")
	return center
}

// CreateTestPayment creates a pending payment for orderID
func CreateTestPayment(t *testing.T, db *gorm.DB, orderID, userID, centerID, plan string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		OrderID:  orderID,
		Amount:   decimal.RequireFromString("1000.00"),
		Currency: "INR",
		Status:   models.PaymentPending,
		UserID:   userID,
		CenterID: centerID,
		Plan:     plan,
	}
	require.NoError(t, db.Create(payment).Error, "create test payment")
	return payment
}

// TestRequest represents a test HTTP request. RawBody is sent as-is when set.
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	RawBody []byte
	Headers map[string]string
}

// TestResponse represents a test HTTP response
type TestResponse struct {
	StatusCode int
	Header     http.Header
	Body       map[string]interface{}
	Raw        []byte
}

// MakeTestRequest makes a test HTTP request
func MakeTestRequest(t *testing.T, router *gin.Engine, req TestRequest) TestResponse {
	t.Helper()
	body := req.RawBody
	if body == nil && req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		require.NoError(t, err, "marshal request body")
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewReader(body))
	require.NoError(t, err, "create request")
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	resp := TestResponse{StatusCode: w.Code, Header: w.Header(), Raw: w.Body.Bytes()}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.Body), "unmarshal response body")
	}
	return resp
}

// AssertResponse asserts the status code and, when given, the body fields
func AssertResponse(t *testing.T, response TestResponse, expectedStatusCode int, expectedBody map[string]interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatusCode, response.StatusCode, string(response.Raw))
	for key, value := range expectedBody {
		assert.Equal(t, value, response.Body[key], "field %s", key)
	}
}

// GetTestToken signs an access token for userID carrying role in app_metadata
func GetTestToken(t *testing.T, userID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":          userID,
		"email":        userID + "@example.com",
		"app_metadata": map[string]interface{}{"role": role},
		"exp":          time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err, "sign test token")
	return token
}

// BearerHeader returns an Authorization header for token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
