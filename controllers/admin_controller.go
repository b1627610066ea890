package controllers

import (
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

// POST /api/admin/centers
func (h *Handler) CreateCenter(c *gin.Context) {
	utils.LogInfo("CreateCenter called")
	var req services.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid center request: %v", err)
		utils.BadRequest(c, "Invalid request. name, city and fee are required", err.Error())
		return
	}

	center, err := h.Centers.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Create center", err)
		return
	}
	utils.Created(c, "Center created successfully", center)
}

// GET /api/admin/centers
func (h *Handler) ListCenters(c *gin.Context) {
	pagination := utils.NewPagination(c)
	centers, err := h.Centers.List(c.Request.Context(), c.Query("city"), pagination)
	if err != nil {
		respondError(c, "List centers", err)
		return
	}
	utils.SuccessWithPagination(c, "Centers retrieved successfully", gin.H{"centers": centers}, pagination)
}

// GET /api/admin/enquiries
func (h *Handler) ListEnquiries(c *gin.Context) {
	pagination := utils.NewPagination(c)
	enquiries, err := h.Enquiries.List(c.Request.Context(), c.Query("district"), pagination)
	if err != nil {
		respondError(c, "List enquiries", err)
		return
	}
	utils.SuccessWithPagination(c, "Enquiries retrieved successfully", gin.H{"enquiries": enquiries}, pagination)
}
