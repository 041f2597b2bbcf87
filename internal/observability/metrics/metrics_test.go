package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIntakeMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.ObserveTurn("greeting", "unknown")
	m.ObserveQuote("grounding-installation")
	m.ObserveBooking("booked")
	m.ObserveBooking("conflict")
	m.ObserveTurnLatency("scheduling", 0.02)
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveTurn("greeting", "unknown")
	m.ObserveQuote("certification-inspection")
	m.ObserveBooking("booked")
	m.ObserveTurnLatency("greeting", 0.1)
}
