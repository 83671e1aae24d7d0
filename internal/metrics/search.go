package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "searches_total",
			Help:      "Total number of searches by retrieval mode and strategy",
		},
		[]string{"mode", "strategy"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propsearch",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "propsearch",
			Name:      "search_results_returned",
			Help:      "Number of listings returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	SearchFilteredOut = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "search_candidates_filtered_total",
			Help:      "Candidates excluded by the post-retrieval filter chain",
		},
	)

	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "source_errors_total",
			Help:      "Candidate source failures by retrieval mode",
		},
		[]string{"mode"},
	)

	RerankFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "rerank_fallbacks_total",
			Help:      "Searches that fell back to the pre-rerank order",
		},
	)

	ValuationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "valuation_errors_total",
			Help:      "Valuation failures swallowed by the investor strategy",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(SearchFilteredOut)
	prometheus.MustRegister(SourceErrorsTotal)
	prometheus.MustRegister(RerankFallbacksTotal)
	prometheus.MustRegister(ValuationErrorsTotal)
	searchMetricsRegistered = true
}
