package metrics

import "github.com/prometheus/client_golang/prometheus"

// Entity extraction Prometheus metrics.
var (
	NERRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "ner_requests_total",
			Help:      "Total number of entity extraction requests",
		},
		[]string{"provider", "status"},
	)

	NERRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qou",
			Name:      "ner_request_duration_seconds",
			Help:      "Entity extraction request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"provider"},
	)

	EntityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "entity_resolutions_total",
			Help:      "Entity resolutions by recognizer outcome",
		},
		[]string{"result"}, // "ok" / "failed" / "skipped"
	)

	FallbackEntitiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "fallback_entities_total",
			Help:      "Entities synthesized from the fallback lexicon",
		},
		[]string{"type"},
	)

	NERCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "ner_cache_total",
			Help:      "Entity extraction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var nerMetricsRegistered bool

// RegisterNERMetrics registers entity extraction metrics. Must be called once from main.
func RegisterNERMetrics() {
	if nerMetricsRegistered {
		return
	}
	prometheus.MustRegister(NERRequestsTotal)
	prometheus.MustRegister(NERRequestDuration)
	prometheus.MustRegister(EntityResolutionsTotal)
	prometheus.MustRegister(FallbackEntitiesTotal)
	prometheus.MustRegister(NERCacheTotal)
	nerMetricsRegistered = true
}
