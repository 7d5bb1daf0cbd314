package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rate client metrics
var (
	// Счетчик попаданий в кэш курсов
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rates_cache_hits_total",
			Help: "Total number of rate cache hits",
		},
	)

	// Счетчик промахов кэша курсов
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rates_cache_misses_total",
			Help: "Total number of rate cache misses",
		},
	)

	// Счетчик неудачных запросов к сервису курсов
	fetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_fetch_failures_total",
			Help: "Total number of failed rate fetches by reason",
		},
		[]string{"reason"}, // request, status, decode, value
	)
)
