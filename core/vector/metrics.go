package vector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// vectorsTotal counts Vector calls by result.
// Labels: "hit", "miss", "unknown"
var vectorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sememe_vectors_total",
	Help: "Word vector requests by cache result",
}, []string{"result"})
