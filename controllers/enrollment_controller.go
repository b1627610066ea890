package controllers

import (
	"fmt"
	"time"

	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /api/enrollments
func (h *Handler) ListMyEnrollments(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		return
	}

	enrollments, err := h.Enrollments.ListForUser(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, "List enrollments", err)
		return
	}
	utils.Success(c, "Enrollments retrieved successfully", gin.H{"enrollments": enrollments})
}

func enrollmentFilter(c *gin.Context) services.EnrollmentFilter {
	return services.EnrollmentFilter{
		Status:   c.Query("status"),
		CenterID: c.Query("center_id"),
	}
}

// GET /api/admin/enrollments
func (h *Handler) AdminListEnrollments(c *gin.Context) {
	utils.LogInfo("AdminListEnrollments called")
	pagination := utils.NewPagination(c)
	enrollments, err := h.Enrollments.ListAll(c.Request.Context(), enrollmentFilter(c), pagination)
	if err != nil {
		respondError(c, "List enrollments", err)
		return
	}
	utils.SuccessWithPagination(c, "Enrollments retrieved successfully", gin.H{"enrollments": enrollments}, pagination)
}

// GET /api/admin/enrollments/export
func (h *Handler) AdminExportEnrollments(c *gin.Context) {
	utils.LogInfo("AdminExportEnrollments called")
	enrollments, err := h.Enrollments.ExportAll(c.Request.Context(), enrollmentFilter(c))
	if err != nil {
		respondError(c, "Export enrollments", err)
		return
	}
	utils.LogDebug("Exporting %d enrollments", len(enrollments))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=enrollments_%s.xlsx", time.Now().Format("20060102")))
	if err := services.WriteEnrollmentsXLSX(c.Writer, enrollments); err != nil {
		utils.LogError("Failed to write enrollment export: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
}
