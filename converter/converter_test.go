package converter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/config"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pkg/metrics"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	regressor = `{"__class__": "sklearn.linear_model._base.LinearRegression", "_sklearn_version": "1.3.2",
		"n_features_in_": 2, "coef_": {"__ndarray__": [1.0, 2.0]}, "intercept_": 0.5}`
	scaler = `{"__class__": "sklearn.preprocessing._data.StandardScaler", "n_features_in_": 2,
		"mean_": {"__ndarray__": [1.0, 0.0]}, "scale_": {"__ndarray__": [2.0, 1.0]}}`
	unsupported = `{"__class__": "xgboost.sklearn.XGBClassifier"}`
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestConverter(t *testing.T, opts ...Option) (*Converter, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	c := New(append([]Option{WithLogger(logger)}, opts...)...)
	c.now = func() time.Time { return fixedTime }
	return c, logger
}

func dataFieldNames(doc *pmml.PMML) []string {
	var names []string
	for _, df := range doc.DataDictionary.DataFields {
		names = append(names, df.Name)
	}
	return names
}

func TestConvert(t *testing.T) {
	c, logger := newTestConverter(t, WithHeader(config.HeaderConfig{Copyright: "ACME", Timestamp: true}))

	doc, err := c.Convert(modeltest.Decode(t, regressor))
	require.NoError(t, err)

	assert.Equal(t, "ACME", doc.Header.Copyright)
	assert.Equal(t, Application, doc.Header.Application.Name)
	assert.Equal(t, "2024-05-01T12:00:00Z", doc.Header.Timestamp)
	assert.Equal(t, []string{"y", "x1", "x2"}, dataFieldNames(doc))
	assert.Equal(t, 3, doc.DataDictionary.NumberOfFields)
	assert.Nil(t, doc.TransformationDictionary)

	require.Len(t, doc.Models, 1)
	rm, ok := doc.Models[0].(*pmml.RegressionModel)
	require.True(t, ok)
	var mining []string
	for _, f := range rm.MiningSchema.MiningFields {
		mining = append(mining, f.Name)
	}
	assert.Equal(t, []string{"y", "x1", "x2"}, mining)

	assert.True(t, logger.ContainsMessage("Converted estimator"))
	assert.True(t, logger.ContainsField(log.ModelKey, "RegressionModel"))

	var buf bytes.Buffer
	require.NoError(t, pmml.Marshal(&buf, doc))
	assert.Contains(t, buf.String(), `<Application name="skpmml" version="dev">`)
	assert.Contains(t, buf.String(), `<DataDictionary numberOfFields="3">`)
}

func TestConvertPMMLPipeline(t *testing.T) {
	c, _ := newTestConverter(t)
	dump := fmt.Sprintf(`{"__class__": "sklearn2pmml.pipeline.PMMLPipeline",
		"steps": [["scaler", %s], ["regressor", %s]],
		"active_fields": {"__ndarray__": ["a", "b"]}, "target_fields": ["price"],
		"pmml_feature_importances_": {"__ndarray__": [0.7, 0.3]}}`, scaler, regressor)

	doc, err := c.Convert(modeltest.Decode(t, dump))
	require.NoError(t, err)

	assert.Equal(t, []string{"price", "a", "b"}, dataFieldNames(doc))
	require.NotNil(t, doc.TransformationDictionary)
	require.Len(t, doc.TransformationDictionary.DerivedFields, 1)
	assert.Equal(t, "standardScaler(a)", doc.TransformationDictionary.DerivedFields[0].Name)

	ms := doc.Models[0].Base().MiningSchema
	require.NotNil(t, ms.Field("a"))
	assert.InDelta(t, 0.7, *ms.Field("a").Importance, 1e-12)
	assert.Equal(t, pmml.UsageTarget, ms.Field("price").UsageType)
}

func TestConvertUnusedInputsAreDropped(t *testing.T) {
	c, _ := newTestConverter(t)
	dump := `{"__class__": "sklearn.linear_model.LinearRegression", "n_features_in_": 3,
		"coef_": {"__ndarray__": [1.0, 0.0, 2.0]}, "intercept_": 0.0}`

	doc, err := c.Convert(modeltest.Decode(t, dump))
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x1", "x3"}, dataFieldNames(doc))
}

func TestConvertOptions(t *testing.T) {
	c, _ := newTestConverter(t, WithOptions(schema.Options{NumIteration: 7, AllowMissing: true}))
	assert.Equal(t, 7, c.options.NumIteration)
	assert.True(t, c.options.AllowMissing)
}

func TestConvertVersionWarning(t *testing.T) {
	var warnings []error
	c, _ := newTestConverter(t, WithWarningHandler(func(w error) { warnings = append(warnings, w) }))
	dump := `{"__class__": "sklearn.linear_model.LinearRegression", "_sklearn_version": "0.16.1",
		"n_features_in_": 1, "coef_": {"__ndarray__": [1.0]}, "intercept_": 0.0}`
	_, err := c.Convert(modeltest.Decode(t, dump))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	var vw *errors.VersionWarning
	assert.True(t, errors.As(warnings[0], &vw))

	warnings = nil
	_, err = c.Convert(modeltest.Decode(t, regressor))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

type panickingRegressor struct {
	model.RegressorBase
}

func (p *panickingRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	s.SubSchema([]int{5})
	return nil, nil
}

func TestConvertErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	registry := NewRegistry()
	registry.Register("custom", "Broken", func(obj *store.Object, r *model.Registry) (model.Step, error) {
		return &panickingRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
	})
	c, _ := newTestConverter(t, WithMetrics(m), WithRegistry(registry))

	_, err = c.Convert(modeltest.Decode(t, unsupported))
	assert.Equal(t, errors.KindUnsupportedEstimatorType, errors.KindOf(err))

	_, err = c.Convert(modeltest.Decode(t, `{"__class__": "custom.Broken", "n_features_in_": 1}`))
	var p *errors.PanicError
	require.True(t, errors.As(err, &p))
	assert.Equal(t, "Convert", p.Operation)

	_, err = c.Convert(modeltest.Decode(t, regressor))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "skpmml_conversions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"models/churn.json":     "out/churn.pmml",
		"models/churn.json.zst": "out/churn.pmml",
		"churn.yaml.gz":         "out/churn.pmml",
		"churn":                 "out/churn.pmml",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(want), OutputPath("out", in))
		})
	}
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	good := write("good.json", regressor)
	bad := write("bad.json", unsupported)

	c, logger := newTestConverter(t, WithWorkers(2))
	results := c.ConvertAll([]Job{
		{Input: good, Output: OutputPath(dir, good)},
		{Input: bad, Output: OutputPath(dir, bad)},
		{Input: filepath.Join(dir, "missing.json"), Output: filepath.Join(dir, "missing.pmml")},
	})
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	data, err := os.ReadFile(filepath.Join(dir, "good.pmml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<RegressionModel")

	assert.Equal(t, errors.KindUnsupportedEstimatorType, errors.KindOf(results[1].Err))
	_, err = os.Stat(filepath.Join(dir, "bad.pmml"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, results[2].Err)
	assert.True(t, logger.ContainsMessage("Conversion failed"))
	assert.True(t, logger.ContainsMessage("Converted batch"))
}

func TestNewRegistry(t *testing.T) {
	keys := NewRegistry().Keys()
	for _, key := range []string{
		"sklearn.linear_model.LogisticRegression",
		"sklearn.tree.DecisionTreeClassifier",
		"sklearn.ensemble.IsolationForest",
		"sklearn2pmml.pipeline.PMMLPipeline",
		"sklearn.neural_network.MLPClassifier",
		"sklearn.cluster.KMeans",
		"lightgbm.sklearn.LGBMClassifier",
	} {
		assert.Contains(t, keys, key)
	}
}
