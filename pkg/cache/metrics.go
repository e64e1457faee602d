package cache

import "github.com/prometheus/client_golang/prometheus"

// RegisterMetrics exposes a cache's statistics to a Prometheus
// registerer under the given namespace. The source function is invoked
// at scrape time, so registration adds no overhead to cache operations.
func RegisterMetrics(reg prometheus.Registerer, namespace string, source func() Stats) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of cached entries.",
		}, func() float64 { return float64(source().Size) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hit_rate",
			Help:      "Fraction of accesses served from cache.",
		}, func() float64 { return source().HitRate }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits.",
		}, func() float64 { return float64(source().TotalHits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses.",
		}, func() float64 { return float64(source().TotalMisses) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total capacity evictions.",
		}, func() float64 { return float64(source().Evictions) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "expirations_total",
			Help:      "Total TTL expirations, lazy and swept.",
		}, func() float64 { return float64(source().Expirations) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
