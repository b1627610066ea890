package controllers

import (
	"io"
	"net/http"

	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Could not read request body", err.Error())
		return nil, false
	}
	return body, true
}

// POST /api/webhooks/razorpay
func (h *Handler) RazorpayWebhook(c *gin.Context) {
	utils.LogInfo("RazorpayWebhook called")
	body, ok := readBody(c)
	if !ok {
		return
	}

	signature := c.GetHeader(utils.RazorpaySignatureHeader)
	if !utils.VerifyWebhookSignature(h.Config.RazorpayWebhookSecret, body, signature) {
		utils.LogError("Rejected Razorpay webhook with missing or invalid signature")
		metrics.IncWebhook(models.ProviderRazorpay, "", "rejected")
		utils.Unauthorized(c, "Invalid webhook signature")
		return
	}

	eventID := c.GetHeader(utils.RazorpayEventIDHeader)
	outcome, err := h.Webhooks.HandleRazorpay(c.Request.Context(), eventID, body)
	if err != nil {
		metrics.IncWebhook(models.ProviderRazorpay, "", "error")
		respondError(c, "Razorpay webhook "+eventID, err)
		return
	}
	metrics.IncWebhook(models.ProviderRazorpay, outcome.Event, outcome.Status)
	utils.LogInfo("Razorpay %s event %s: %s", outcome.Event, eventID, outcome.Status)

	resp := gin.H{"received": true}
	if outcome.Status == services.WebhookDuplicate {
		resp["duplicate"] = true
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/webhooks/typeform
func (h *Handler) TypeformWebhook(c *gin.Context) {
	utils.LogInfo("TypeformWebhook called")
	body, ok := readBody(c)
	if !ok {
		return
	}

	if secret := h.Config.TypeformSecret; secret != "" {
		if !utils.VerifyTypeformSignature(secret, body, c.GetHeader(utils.TypeformSignatureHeader)) {
			utils.LogError("Rejected Typeform webhook with invalid signature")
			metrics.IncWebhook("typeform", "form_response", "rejected")
			utils.Unauthorized(c, "Invalid webhook signature")
			return
		}
	}

	enquiry, created, err := h.Enquiries.IngestTypeform(c.Request.Context(), body)
	if err != nil {
		metrics.IncWebhook("typeform", "form_response", "error")
		respondError(c, "Typeform webhook", err)
		return
	}

	if !created {
		metrics.IncWebhook("typeform", "form_response", services.WebhookDuplicate)
		c.JSON(http.StatusOK, gin.H{"message": "Enquiry already recorded", "enquiry_id": enquiry.ID})
		return
	}
	metrics.IncWebhook("typeform", "form_response", services.WebhookProcessed)
	c.JSON(http.StatusOK, gin.H{"message": "Enquiry recorded", "enquiry_id": enquiry.ID})
}
