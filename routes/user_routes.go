package routes

import (
	"net/http"

	"github.com/Govind-619/EnrollSphere/controllers"
	"github.com/Govind-619/EnrollSphere/middleware"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes the routes available to any signed-in user
func initUserRoutes(router *gin.RouterGroup, h *controllers.Handler) {
	auth := middleware.AuthMiddleware(h.Config.JWTSecret)

	payments := router.Group("/payments")
	{
		payments.POST("/order", auth, h.CreatePaymentOrder)
		payments.Any("/verify", utils.AllowMethods(http.MethodPost), auth, h.VerifyPayment)
		payments.GET("/:order_id/invoice", auth, h.DownloadInvoice)
	}

	notifications := router.Group("/notifications")
	{
		notifications.Any("/send", utils.AllowMethods(http.MethodPost), auth, middleware.AdminMiddleware(), h.SendNotification)
		notifications.GET("", auth, h.ListNotifications)
		notifications.PATCH("/:id", auth, h.UpdateNotification)
		notifications.POST("/read-all", auth, h.MarkAllNotificationsRead)
	}

	router.GET("/enrollments", auth, h.ListMyEnrollments)

	referrals := router.Group("/referrals", auth)
	{
		referrals.POST("", h.CreateReferral)
		referrals.GET("", h.ListReferrals)
	}
}
