package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	promCacheQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_cache_queries_total",
		Help: "Total number of lookups against a non-empty block cache",
	})
	promCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_cache_hits_total",
		Help: "Number of lookups answered from the block cache",
	})
	promCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_cache_evictions_total",
		Help: "Number of blocks evicted from a full block cache",
	})
)

func init() {
	prometheus.MustRegister(promCacheQueries)
	prometheus.MustRegister(promCacheHits)
	prometheus.MustRegister(promCacheEvictions)
}
