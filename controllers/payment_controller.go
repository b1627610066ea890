package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	CenterID   string `json:"center_id" binding:"required"`
	Plan       string `json:"plan" binding:"required,oneof=full emi_3 emi_6"`
	ReferralID string `json:"referral_id"`
}

// POST /api/payments/order
func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	utils.LogInfo("CreatePaymentOrder called")
	user, ok := principal(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request from user %s: %v", user.UserID, err)
		utils.BadRequest(c, "Invalid request. center_id and plan are required", err.Error())
		return
	}

	result, err := h.Checkout.CreateOrder(c.Request.Context(), services.CheckoutRequest{
		UserID:     user.UserID,
		CenterID:   req.CenterID,
		Plan:       req.Plan,
		ReferralID: req.ReferralID,
	})
	if err != nil {
		respondError(c, "Create payment order", err)
		return
	}

	utils.Created(c, "Payment order created", gin.H{
		"order_id":       result.OrderID,
		"amount":         result.AmountPaise,
		"amount_display": result.Amount.StringFixed(2),
		"currency":       result.Currency,
		"key":            result.Key,
		"plan":           result.Plan,
		"center_id":      result.CenterID,
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	UserID            string `json:"user_id"`
	CenterID          string `json:"center_id"`
	Plan              string `json:"plan"`
}

// POST /api/payments/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	started := time.Now()
	utils.LogInfo("VerifyPayment called")
	user, ok := principal(c)
	if !ok {
		metrics.ObservePaymentVerify("fail", "unauthorized", started)
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment verification request from user %s: %v", user.UserID, err)
		metrics.ObservePaymentVerify("fail", "bad_request", started)
		utils.BadRequest(c, "Invalid request. razorpay_order_id, razorpay_payment_id and razorpay_signature are required", err.Error())
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = user.UserID
	}
	if userID != user.UserID && !user.IsAdmin() {
		utils.LogError("User %s tried to confirm a payment for %s", user.UserID, userID)
		metrics.ObservePaymentVerify("fail", "forbidden", started)
		utils.Forbidden(c, "Cannot confirm a payment for another user")
		return
	}

	result, err := h.Enrollments.Confirm(c.Request.Context(), services.ConfirmRequest{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
		UserID:    userID,
		CenterID:  req.CenterID,
		Plan:      req.Plan,
	})
	if err != nil {
		metrics.ObservePaymentVerify("fail", verifyFailureReason(err), started)
		respondError(c, "Payment verification", err)
		return
	}

	outcome := "ok"
	message := "Payment verified and enrollment created"
	if result.Replayed {
		outcome = "replayed"
		message = "Payment already verified"
	}
	metrics.ObservePaymentVerify(outcome, "", started)

	c.JSON(http.StatusOK, gin.H{
		"message":           message,
		"enrollment_status": result.Enrollment.Status,
		"enrollment_id":     result.Enrollment.ID,
		"replayed":          result.Replayed,
	})
}

func verifyFailureReason(err error) string {
	if errors.Is(err, services.ErrInvalidSignature) {
		return "bad_signature"
	}
	switch utils.StatusOf(err) {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	}
	return "store_error"
}

// GET /api/payments/:order_id/invoice
func (h *Handler) DownloadInvoice(c *gin.Context) {
	utils.LogInfo("Starting invoice download process")
	user, ok := principal(c)
	if !ok {
		return
	}

	orderID := c.Param("order_id")
	invoice, err := h.Invoices.Load(c.Request.Context(), orderID, user.UserID, user.HasRole(models.RoleAdmin))
	if err != nil {
		respondError(c, "Load invoice", err)
		return
	}

	var buf bytes.Buffer
	if err := h.Invoices.Render(&buf, invoice); err != nil {
		respondError(c, "Render invoice", err)
		return
	}
	utils.LogInfo("PDF invoice generated for order %s", orderID)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", orderID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
