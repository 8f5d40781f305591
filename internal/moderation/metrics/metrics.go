package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ban lifecycle.
type Metrics struct {
	BansIssued       *prometheus.CounterVec
	BansLifted       prometheus.Counter
	StaleBansCleared prometheus.Counter
	ModerationDenied *prometheus.CounterVec
	NotifyFailures   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BansIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_bans_issued_total",
			Help: "Bans issued, by kind",
		}, []string{"kind"}),
		BansLifted: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_bans_lifted_total",
			Help: "Ban records removed by a moderator",
		}),
		StaleBansCleared: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_stale_bans_cleared_total",
			Help: "Elapsed temporary ban records cleared by a later administrative action",
		}),
		ModerationDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_moderation_denied_total",
			Help: "Ban or unban attempts rejected for missing role",
		}, []string{"action"}),
		NotifyFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_moderation_notify_failures_total",
			Help: "Ban notifications that could not be dispatched after the ban committed",
		}),
	}
}

func (m *Metrics) IncBanIssued(kind string) {
	m.BansIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncBanLifted() {
	m.BansLifted.Inc()
}

func (m *Metrics) IncStaleCleared() {
	m.StaleBansCleared.Inc()
}

func (m *Metrics) IncDenied(action string) {
	m.ModerationDenied.WithLabelValues(action).Inc()
}

func (m *Metrics) IncNotifyFailure() {
	m.NotifyFailures.Inc()
}
