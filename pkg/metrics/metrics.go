// Package metrics counts conversions with Prometheus collectors.
//
// Collectors are registered on a caller-supplied registry rather than the
// global default one, so that several converters (and tests) can coexist:
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	...
//	m.Observe("Classifier", err, time.Since(start))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

const namespace = "skpmml"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomePanic   = "panic"
)

// Metrics holds the conversion collectors. A nil *Metrics records nothing.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions by estimator kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration from decoded dump to PMML document",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"kind"},
		),
	}
	for _, c := range []prometheus.Collector{m.conversions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register conversion metrics")
		}
	}
	return m, nil
}

// Outcome maps a conversion result to its label value: "success", "panic",
// or the error kind.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var p *errors.PanicError
	if errors.As(err, &p) {
		return OutcomePanic
	}
	return errors.KindOf(err).String()
}

// Observe records one conversion of an estimator of the given kind.
func (m *Metrics) Observe(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "Unknown"
	}
	m.conversions.WithLabelValues(kind, Outcome(err)).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
}
