package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication outcome labels besides the iam.FailureReason values.
const (
	ResultSuccess   = "success"
	ResultAnonymous = "anonymous"
	ResultError     = "error"
)

// AuthMetrics counts authentication outcomes per request.
type AuthMetrics struct {
	outcomes *prometheus.CounterVec
}

// NewAuthMetrics registers the authentication counter with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &AuthMetrics{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "authentication_total",
			Help:      "Authentication attempts by result",
		}, []string{"result"}),
	}
}

// Observe increments the counter for result. Safe on a nil receiver.
func (m *AuthMetrics) Observe(result string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(result).Inc()
}
