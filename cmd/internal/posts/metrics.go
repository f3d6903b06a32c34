package posts

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus collectors for the posts domain.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheRequests      *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	writes             *prometheus.CounterVec
}

// NewMetrics registers the posts collectors on reg. cache may be nil; when
// set, a gauge reports its live entry count.
func NewMetrics(reg prometheus.Registerer, cache *Cache) (*Metrics, error) {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "post_cache",
			Name:      "requests_total",
			Help:      "Post list cache lookups by result (hit, miss).",
		}, []string{"result"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "post_cache",
			Name:      "invalidations_total",
			Help:      "Owner cache entries invalidated after a write.",
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "posts",
			Name:      "writes_total",
			Help:      "Post writes by operation and result.",
		}, []string{"op", "result"}),
	}

	cs := []prometheus.Collector{m.cacheRequests, m.cacheInvalidations, m.writes}
	if cache != nil {
		cs = append(cs, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "postboard",
			Subsystem: "post_cache",
			Name:      "entries",
			Help:      "Live owner snapshots held by the post cache.",
		}, func() float64 { return float64(cache.Len()) }))
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) cacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *Metrics) invalidated() {
	if m == nil {
		return
	}
	m.cacheInvalidations.Inc()
}

func (m *Metrics) write(op, result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(op, result).Inc()
}
