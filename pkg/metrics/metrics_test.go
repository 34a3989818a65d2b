package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, OutcomeSuccess},
		{"kind", errors.NewAttributeMissingError("sklearn.tree.DecisionTreeRegressor", "tree_"), "AttributeMissing"},
		{"wrapped kind", errors.Wrap(errors.NewSchemaSizeError("op", "features", 2, 3), "convert"), "SchemaSizeMismatch"},
		{"panic", errors.SafeExecute("Convert", func() error { panic("index out of range") }), OutcomePanic},
		{"plain", errors.New("disk full"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Observe("Classifier", nil, 10*time.Millisecond)
	m.Observe("Classifier", nil, 20*time.Millisecond)
	m.Observe("", errors.NewUnsupportedEstimatorError("xgboost.sklearn.XGBClassifier", ""), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.conversions.WithLabelValues("Classifier", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("Unknown", "UnsupportedEstimatorType")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	_, err = New(reg)
	assert.Error(t, err, "collectors register once per registry")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("Regressor", nil, time.Second) })
}
