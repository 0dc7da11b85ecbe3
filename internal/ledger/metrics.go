package ledger

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts till activity for the /metrics endpoint.
type Metrics struct {
	sales        *prometheus.CounterVec
	salesValue   *prometheus.CounterVec
	cancelled    *prometheus.CounterVec
	drawer       *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	openSessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caixa",
			Name:      "sales_total",
			Help:      "Sales registered, by payment method.",
		}, []string{"method"}),
		salesValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caixa",
			Name:      "sales_value_cents_total",
			Help:      "Value of registered sales in cents, by payment method.",
		}, []string{"method"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caixa",
			Name:      "sales_cancelled_total",
			Help:      "Sales cancelled, by payment method.",
		}, []string{"method"}),
		drawer: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caixa",
			Name:      "drawer_operations_total",
			Help:      "Cash drawer withdrawals and supplies.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caixa",
			Name:      "credential_rejections_total",
			Help:      "Privileged actions refused for bad operator credentials.",
		}, []string{"action"}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "caixa",
			Name:      "open_tills",
			Help:      "Tills opened and not yet closed by this process.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.sales, m.salesValue, m.cancelled, m.drawer, m.rejections, m.openSessions)
	}

	return m
}

func (m *Metrics) sale(method string, value int64) {
	if m == nil {
		return
	}

	m.sales.WithLabelValues(method).Inc()
	m.salesValue.WithLabelValues(method).Add(float64(value))
}

func (m *Metrics) cancel(method string) {
	if m == nil {
		return
	}

	m.cancelled.WithLabelValues(method).Inc()
}

func (m *Metrics) drawerOp(kind string) {
	if m == nil {
		return
	}

	m.drawer.WithLabelValues(kind).Inc()
}

func (m *Metrics) rejected(action string) {
	if m == nil {
		return
	}

	m.rejections.WithLabelValues(action).Inc()
}

func (m *Metrics) opened() {
	if m == nil {
		return
	}

	m.openSessions.Inc()
}

func (m *Metrics) closed() {
	if m == nil {
		return
	}

	m.openSessions.Dec()
}
