package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker and outbound client collectors, registered on the default registry.
var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "breaker_state",
		Help: "Breaker state per target (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})
	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breaker_transition_total",
		Help: "Breaker state transitions per target.",
	}, []string{"target", "from", "to"})
	breakerOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breaker_open_total",
		Help: "Times a breaker opened per target.",
	}, []string{"target"})
	// outboundAttempts outcomes: ok, retry, status, error, rejected.
	outboundAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_http_attempts_total",
		Help: "Outbound HTTP attempts made through HTTPClient.",
	}, []string{"target", "outcome"})
)
