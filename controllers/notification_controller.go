package controllers

import (
	"net/http"

	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

// POST /api/notifications/send
func (h *Handler) SendNotification(c *gin.Context) {
	utils.LogInfo("SendNotification called")
	admin, ok := principal(c)
	if !ok {
		return
	}

	var req services.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid notification request: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	sent, err := h.Notifications.Dispatch(c.Request.Context(), req)
	if err != nil {
		status := utils.StatusOf(err)
		if status < http.StatusInternalServerError {
			respondError(c, "Send notification", err)
			return
		}
		// earlier chunks stay committed
		utils.LogError("Send notification stopped after %d recipients: %v", sent, err)
		c.JSON(status, gin.H{
			"success":    false,
			"message":    "Notification send failed",
			"recipients": sent,
			"error":      err.Error(),
		})
		return
	}
	utils.LogInfo("Admin %s sent %q to %d recipients", admin.UserID, req.Title, sent)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Notification sent",
		"recipients": sent,
	})
}

// GET /api/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)
	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.Notifications.List(c.Request.Context(), user.UserID, unreadOnly, pagination)
	if err != nil {
		respondError(c, "List notifications", err)
		return
	}
	unread, err := h.Notifications.UnreadCount(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, "Count unread notifications", err)
		return
	}

	utils.SuccessWithPagination(c, "Notifications retrieved successfully", gin.H{
		"notifications": notifications,
		"unread":        unread,
	}, pagination)
}

type updateNotificationRequest struct {
	Read *bool `json:"read" binding:"required"`
}

// PATCH /api/notifications/:id
func (h *Handler) UpdateNotification(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		return
	}

	id, valid := utils.ParseUintParam(c, "id")
	if !valid {
		utils.BadRequest(c, "Invalid notification ID", nil)
		return
	}

	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. read is required", err.Error())
		return
	}

	notification, err := h.Notifications.SetRead(c.Request.Context(), user.UserID, id, *req.Read)
	if err != nil {
		respondError(c, "Update notification", err)
		return
	}
	utils.Success(c, "Notification updated", notification)
}

// POST /api/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		return
	}

	updated, err := h.Notifications.MarkAllRead(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, "Mark notifications read", err)
		return
	}
	utils.Success(c, "Notifications marked as read", gin.H{"updated": updated})
}
