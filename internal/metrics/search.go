package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envie",
			Name:      "search_requests_total",
			Help:      "Envie searches by outcome",
		},
		[]string{"outcome"}, // ok / no_keywords / error
	)

	SearchStageSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envie",
			Name:      "search_stage_establishments",
			Help:      "Establishments remaining after each search stage",
			Buckets:   []float64{0, 1, 5, 15, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"stage"}, // candidates / within_radius / relevant
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envie",
			Name:      "geocode_requests_total",
			Help:      "Upstream geocoding requests by result",
		},
		[]string{"result"}, // ok / not_found / error
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envie",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache hits and misses",
		},
		[]string{"result"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "envie",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search Prometheus metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchStageSize)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(RateLimitedTotal)
	searchMetricsRegistered = true
}
