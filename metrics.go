package unitconv

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Conversion results recorded by Metrics.
const (
	ResultOK           = "ok"
	ResultInvalidInput = "invalid_input"
	ResultUndefined    = "undefined"
)

// Metrics holds the converter counters. A nil *Metrics records nothing.
type Metrics struct {
	Conversions *prometheus.CounterVec
	RateLoads   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unitconv",
				Name:      "conversions_total",
				Help:      "Total number of conversions by category and result",
			},
			[]string{"category", "result"},
		),
		RateLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unitconv",
				Subsystem: "rates",
				Name:      "loads_total",
				Help:      "Exchange rate loads by outcome (live, fallback)",
			},
			[]string{"status"},
		),
	}
}

// Register adds the counters to reg. Counters already registered there are
// adopted so several components can share one registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []**prometheus.CounterVec{&m.Conversions, &m.RateLoads} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return err
			}
			*c = existing
		}
	}
	return nil
}

// RecordConversion counts one conversion outcome.
func (m *Metrics) RecordConversion(category, result string) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(category, result).Inc()
}

// RecordRateLoad counts one exchange rate load outcome.
func (m *Metrics) RecordRateLoad(status string) {
	if m == nil {
		return
	}
	m.RateLoads.WithLabelValues(status).Inc()
}
