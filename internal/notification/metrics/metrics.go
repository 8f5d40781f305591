package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for notification delivery.
type Metrics struct {
	Deliveries           *prometheus.CounterVec
	DispatchDuration     prometheus.Histogram
	SubscriptionsRemoved prometheus.Counter
	FeedReads            *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_notification_deliveries_total",
			Help: "Per-channel delivery outcomes",
		}, []string{"channel", "outcome"}),
		DispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "peerhelp_notification_dispatch_duration_seconds",
			Help:    "Time spent in synchronous dispatch (in-app write and push fan-out)",
			Buckets: prometheus.DefBuckets,
		}),
		SubscriptionsRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_push_subscriptions_removed_total",
			Help: "Push subscriptions dropped after the push service reported them gone",
		}),
		FeedReads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_notification_feed_operations_total",
			Help: "Feed reads and read-state mutations",
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncDelivery(channel, outcome string) {
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveDispatch(start time.Time) {
	m.DispatchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSubscriptionRemoved() {
	m.SubscriptionsRemoved.Inc()
}

func (m *Metrics) IncFeedOperation(op string) {
	m.FeedReads.WithLabelValues(op).Inc()
}
