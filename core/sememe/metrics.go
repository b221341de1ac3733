package sememe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// openTotal counts databases handed out by Open.
	// Labels: "build", "cache"
	openTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sememe_db_open_total",
		Help: "Semantic databases opened by source",
	}, []string{"source"})

	cacheLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sememe_cache_load_failures_total",
		Help: "Cache loads that fell back to a rebuild",
	})

	cacheSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sememe_cache_saves_total",
		Help: "Successful cache saves",
	})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sememe_db_build_duration_seconds",
		Help:    "Time to parse resources and build the database",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
)
