package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesComputedTotal counts price computations by currency, tier and outcome.
	QuotesComputedTotal *prometheus.CounterVec
	// CouponResolutionsTotal counts coupon lookups by outcome.
	CouponResolutionsTotal *prometheus.CounterVec
	// QuoteSubmissionsTotal counts quote hand-offs by sink and outcome.
	QuoteSubmissionsTotal *prometheus.CounterVec
	// AssistantRepliesTotal counts assistant replies by mode (ai, fallback, cache).
	AssistantRepliesTotal *prometheus.CounterVec
	// AssistantUpstreamLatency records generative backend latency in milliseconds.
	AssistantUpstreamLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
// Only the first call has an effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesComputedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Count of price computations by currency, tier and result.",
		}, []string{"currency", "tier", "result"}))
		CouponResolutionsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_resolutions_total",
			Help:      "Count of coupon resolutions by result.",
		}, []string{"result"}))
		QuoteSubmissionsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_submissions_total",
			Help:      "Count of quote submissions delivered to a sink by result.",
		}, []string{"sink", "result"}))
		AssistantRepliesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_replies_total",
			Help:      "Count of assistant replies by mode.",
		}, []string{"mode"}))
		AssistantUpstreamLatency = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_upstream_duration_ms",
			Help:      "Latency of generative backend calls in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"result"}))
	})
}

// IncCounter increments a domain counter when it has been registered.
func IncCounter(c *prometheus.CounterVec, labels ...string) {
	if c == nil {
		return
	}
	c.WithLabelValues(labels...).Inc()
}
