package auth

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts auth outcomes. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
}

// NewMetrics registers the auth collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by flow (signup, login, resolve) and result.",
		}, []string{"flow", "result"}),
	}
	if err := reg.Register(m.attempts); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(flow, result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(flow, result).Inc()
}
