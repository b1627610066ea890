package routes

import (
	"net/http"

	"github.com/Govind-619/EnrollSphere/controllers"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(h *controllers.Handler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(utils.APIPrefix)
	{
		// Webhooks authenticate with provider signatures, not user tokens
		webhooks := api.Group("/webhooks")
		webhooks.Any("/razorpay", utils.AllowMethods(http.MethodPost), h.RazorpayWebhook)
		webhooks.Any("/typeform", utils.AllowMethods(http.MethodPost), h.TypeformWebhook)

		initUserRoutes(api, h)
		initAdminRoutes(api, h)
	}

	return router
}
