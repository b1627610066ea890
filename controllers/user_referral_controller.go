package controllers

import (
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

type createReferralRequest struct {
	ReferredEmail string `json:"referred_email" binding:"omitempty,email"`
}

// POST /api/referrals
func (h *Handler) CreateReferral(c *gin.Context) {
	utils.LogInfo("CreateReferral called")
	user, ok := principal(c)
	if !ok {
		return
	}

	var req createReferralRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request. referred_email must be an email", err.Error())
			return
		}
	}

	referral, err := h.Referrals.Create(c.Request.Context(), user.UserID, req.ReferredEmail)
	if err != nil {
		respondError(c, "Create referral", err)
		return
	}
	utils.Created(c, "Referral created", referral)
}

// GET /api/referrals
func (h *Handler) ListReferrals(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		return
	}

	referrals, err := h.Referrals.ListByReferrer(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, "List referrals", err)
		return
	}

	paid := 0
	for _, r := range referrals {
		if r.Status == models.ReferralPaid {
			paid++
		}
	}
	utils.Success(c, "Referrals retrieved successfully", gin.H{
		"referrals": referrals,
		"total":     len(referrals),
		"paid":      paid,
	})
}
