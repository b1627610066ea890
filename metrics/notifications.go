package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(notificationsSent, notificationBatches)
}

var (
	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notification rows inserted by type.",
		},
		[]string{"type"},
	)

	// status: ok|error
	notificationBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_batches_total",
			Help: "Notification batch inserts by status.",
		},
		[]string{"status"},
	)
)

func AddNotificationsSent(kind string, n int) {
	notificationsSent.WithLabelValues(norm(kind)).Add(float64(n))
}

func IncNotificationBatch(status string) {
	notificationBatches.WithLabelValues(norm(status)).Inc()
}
