package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		PaymentVerifyRequests,
		PaymentVerifyDuration,
		paymentOrdersTotal,
		enrollmentsTotal,
	)
}

var (
	// result: ok|replayed|fail
	// reason (fail only): bad_request|bad_signature|not_found|forbidden|conflict|store_error
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	PaymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of the payment verification handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	paymentOrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_orders_total",
			Help: "Gateway orders created at checkout by status (created/failed).",
		},
		[]string{"status"},
	)

	enrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Enrollments created by plan.",
		},
		[]string{"plan"},
	)
)

func ObservePaymentVerify(result, reason string, started time.Time) {
	PaymentVerifyRequests.WithLabelValues(norm(result), reason).Inc()
	PaymentVerifyDuration.WithLabelValues(norm(result)).Observe(time.Since(started).Seconds())
}

func IncPaymentOrder(status string) {
	paymentOrdersTotal.WithLabelValues(norm(status)).Inc()
}

func IncEnrollment(plan string) {
	enrollmentsTotal.WithLabelValues(norm(plan)).Inc()
}
