package controllers

import (
	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/middleware"
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the HTTP API on top of the domain services.
type Handler struct {
	Config        *config.Config
	DB            *gorm.DB
	Checkout      *services.CheckoutService
	Enrollments   *services.EnrollmentService
	Webhooks      *services.WebhookService
	Enquiries     *services.EnquiryService
	Notifications *services.NotificationService
	Referrals     *services.ReferralService
	Centers       *services.CenterService
	Invoices      *services.InvoiceService
}

func principal(c *gin.Context) (*middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.LogError("Principal not found in context")
		utils.Unauthorized(c, "Please login for access")
		return nil, false
	}
	return p, true
}

// respondError logs err and writes it with the status it carries
func respondError(c *gin.Context, action string, err error) {
	if utils.StatusOf(err) >= 500 {
		utils.LogError("%s failed: %v", action, err)
	} else {
		utils.LogInfo("%s rejected: %v", action, err)
	}
	utils.RespondAppError(c, err)
}
