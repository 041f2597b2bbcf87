package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the conversational
// intake flow. All observe methods are nil-safe so callers can run
// without metrics wired.
type IntakeMetrics struct {
	turnsTotal    *prometheus.CounterVec
	quotesTotal   *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"stage", "service_intent"}),
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "quotes_total",
			Help:      "Total quotes produced",
		}, []string{"service_intent"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.quotesTotal, m.bookingsTotal, m.turnLatency)
	return m
}

func (m *IntakeMetrics) ObserveTurn(stage, serviceIntent string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, serviceIntent).Inc()
}

func (m *IntakeMetrics) ObserveQuote(serviceIntent string) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(serviceIntent).Inc()
}

func (m *IntakeMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}
