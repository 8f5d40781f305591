package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the confirmation-code workflow.
type Metrics struct {
	CodesIssued   *prometheus.CounterVec
	Confirmations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_deletion_codes_issued_total",
			Help: "Deletion codes issued, by whether the trusted channel accepted the message",
		}, []string{"delivery"}),
		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peerhelp_deletion_confirmations_total",
			Help: "Deletion confirmation attempts, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncIssued(delivered bool) {
	label := "delivered"
	if !delivered {
		label = "failed"
	}
	m.CodesIssued.WithLabelValues(label).Inc()
}

func (m *Metrics) IncConfirmation(outcome string) {
	m.Confirmations.WithLabelValues(outcome).Inc()
}
