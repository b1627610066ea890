package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// ComputeSignature returns hex(HMAC-SHA256(secret, payload)), the format Razorpay signs with.
func ComputeSignature(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// PaymentSignature is the checkout signature Razorpay hands the client for an order/payment pair.
func PaymentSignature(secret, orderID, paymentID string) string {
	return ComputeSignature(secret, []byte(orderID+"|"+paymentID))
}

// VerifyPaymentSignature reports whether signature was produced for orderID|paymentID.
// Comparison is constant-time.
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(PaymentSignature(secret, orderID, paymentID)), []byte(signature))
}

// VerifyWebhookSignature checks a gateway webhook signature over the raw request body.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(ComputeSignature(secret, body)), []byte(signature))
}

// VerifyTypeformSignature accepts either the static shared secret or Typeform's
// "sha256=<base64 hmac>" body signature.
func VerifyTypeformSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	if hmac.Equal([]byte(header), []byte(secret)) {
		return true
	}
	encoded, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(encoded))
}
