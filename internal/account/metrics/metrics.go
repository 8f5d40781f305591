package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the account module.
type Metrics struct {
	AccountsRegistered prometheus.Counter
	AccountsDeleted    prometheus.Counter
	SuspicionScore     prometheus.Histogram
	CapabilityDenied   *prometheus.CounterVec
	ChannelChanges     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccountsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_accounts_registered_total",
			Help: "Accounts created through registration",
		}),
		AccountsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "peerhelp_accounts_deleted_total",
			Help: "Accounts irreversibly deleted after a confirmed request",
		}),
		SuspicionScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "peerhelp_registration_suspicion_score",
			Help:    "Suspicion score assigned at registration",
			Buckets: []float64{0, 10, 15, 20, 30, 35, 45},
		}),
		CapabilityDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_capability_denied_total",
			Help: "Capability checks denied, by capability and trust state",
		}, []string{"capability", "state"}),
		ChannelChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_trusted_channel_changes_total",
			Help: "Trusted channel link and unlink operations",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncRegistered(score int) {
	m.AccountsRegistered.Inc()
	m.SuspicionScore.Observe(float64(score))
}

func (m *Metrics) IncDeleted() {
	m.AccountsDeleted.Inc()
}

func (m *Metrics) IncCapabilityDenied(capability, state string) {
	m.CapabilityDenied.WithLabelValues(capability, state).Inc()
}

func (m *Metrics) IncChannelChange(action string) {
	m.ChannelChanges.WithLabelValues(action).Inc()
}
