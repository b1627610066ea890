package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhookEventsTotal, enquiriesTotal)
}

var (
	// outcome: processed|duplicate|ignored|unlinked|rejected|error
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook deliveries by provider, event and outcome.",
		},
		[]string{"provider", "event", "outcome"},
	)

	enquiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enquiries_total",
			Help: "Enquiries recorded from form submissions.",
		},
	)
)

func IncWebhook(provider, event, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(provider), norm(event), norm(outcome)).Inc()
}

func IncEnquiry() {
	enquiriesTotal.Inc()
}
