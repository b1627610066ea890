package controllers

import (
	"net/http"

	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if h.DB != nil {
		sqlDB, err := h.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			utils.LogError("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
