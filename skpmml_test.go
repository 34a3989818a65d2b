package skpmml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

const classifier = `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.3.2",
	"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 2,
	"coef_": {"__ndarray__": [[1.0, 3.0]]}, "intercept_": {"__ndarray__": [0.0]},
	"classes_": {"__ndarray__": ["no", "yes"]}}`

func TestConvert(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(classifier), &out))
	assert.Contains(t, out.String(), `<RegressionModel functionName="classification" normalizationMethod="logit">`)
	assert.Contains(t, out.String(), `<DataField name="y" optype="categorical" dataType="string">`)
}

func TestConvertCompressed(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(classifier), nil)
	require.NoError(t, enc.Close())

	var out bytes.Buffer
	require.NoError(t, Convert(bytes.NewReader(compressed), &out))
	assert.Contains(t, out.String(), "<RegressionModel")
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		dump string
		kind errors.Kind
	}{
		{"unsupported", `{"__class__": "sklearn.svm.SVC"}`, errors.KindUnsupportedEstimatorType},
		{"missing attribute", `{"__class__": "sklearn.linear_model.LinearRegression", "n_features_in_": 2}`, errors.KindAttributeMissing},
		{"not a dump", `[1, 2, 3]`, errors.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Convert(strings.NewReader(tt.dump), &out)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Zero(t, out.Len())
		})
	}
}
