package utils

// Application constants
const (
	// Application name
	AppName = "EnrollSphere"

	// API prefix
	APIPrefix = "/api"

	// Default port
	DefaultPort = "8080"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Maximum rows inserted per notification batch
	NotificationBatchLimit = 1000

	// Razorpay headers
	RazorpaySignatureHeader = "X-Razorpay-Signature"
	RazorpayEventIDHeader   = "X-Razorpay-Event-Id"

	// Typeform signature header
	TypeformSignatureHeader = "Typeform-Signature"

	// Context keys
	ContextRequestID = "RequestID"
	ContextPrincipal = "principal"
)
