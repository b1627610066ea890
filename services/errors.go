package services

import "github.com/Govind-619/EnrollSphere/utils"

var (
	ErrInvalidSignature     = utils.BadRequestError("Payment verification failed", nil)
	ErrOrderMismatch        = utils.BadRequestError("Confirmation does not match the checkout order", nil)
	ErrInvalidPlan          = utils.BadRequestError("Unknown plan", nil)
	ErrInvalidReferral      = utils.BadRequestError("Referral is not valid for this checkout", nil)
	ErrMalformedPayload     = utils.BadRequestError("Malformed webhook payload", nil)
	ErrInvalidTarget        = utils.BadRequestError("Specify exactly one of user_ids, send_to_all or filter_by", nil)
	ErrPaymentOwnership     = utils.ForbiddenError("Payment belongs to another user", nil)
	ErrPaymentNotFound      = utils.NotFoundError("Payment not found for order", nil)
	ErrCenterNotFound       = utils.NotFoundError("Center not found", nil)
	ErrUserNotFound         = utils.NotFoundError("User profile not found", nil)
	ErrNotificationNotFound = utils.NotFoundError("Notification not found", nil)
	ErrConfirmInProgress    = utils.ConflictError("Payment confirmation already in progress", nil)
)
