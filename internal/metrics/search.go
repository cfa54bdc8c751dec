package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "search_outcomes_total",
			Help:      "Search requests by outcome",
		},
		[]string{"outcome"}, // "hits" / "zero" / "degraded"
	)

	DidYouMeanTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "did_you_mean_total",
			Help:      "Spelling suggestions returned to callers",
		},
	)

	EngineOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qou",
			Name:      "engine_op_duration_seconds",
			Help:      "Search engine operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op", "status"},
	)

	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "intents_total",
			Help:      "Classified queries by intent",
		},
		[]string{"intent"},
	)

	CatalogProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qou",
			Name:      "catalog_products_total",
			Help:      "Products processed by catalog seeding",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchOutcomesTotal)
	prometheus.MustRegister(DidYouMeanTotal)
	prometheus.MustRegister(EngineOpDuration)
	prometheus.MustRegister(IntentsTotal)
	prometheus.MustRegister(CatalogProductsTotal)
	searchMetricsRegistered = true
}
