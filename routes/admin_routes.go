package routes

import (
	"github.com/Govind-619/EnrollSphere/controllers"
	"github.com/Govind-619/EnrollSphere/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup, h *controllers.Handler) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.Config.JWTSecret), middleware.AdminMiddleware())
	{
		// Enrollment management
		admin.GET("/enrollments", h.AdminListEnrollments)
		admin.GET("/enrollments/export", h.AdminExportEnrollments)

		// Center management
		admin.POST("/centers", h.CreateCenter)
		admin.GET("/centers", h.ListCenters)

		// Enquiries
		admin.GET("/enquiries", h.ListEnquiries)
	}
}
