package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "mutations_total", Help: "Committed subject/attendance mutations",
	}, []string{"kind"})
	ConflictsDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "schedule_conflicts_total", Help: "Schedule conflicts reported to callers",
	})
	StatsCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "stats_cache_hits_total", Help: "Stats served from the Redis snapshot",
	})
	StatsCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "stats_cache_misses_total", Help: "Stats recomputed from the mirror",
	})
)

func init() {
	prometheus.MustRegister(Mutations, ConflictsDetected, StatsCacheHits, StatsCacheMisses)
}

func Handler() http.Handler { return promhttp.Handler() }
