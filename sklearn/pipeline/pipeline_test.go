package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/compose"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
	"github.com/YuminosukeSato/skpmml/sklearn/preprocessing"
)

var registerAll = []func(*model.Registry){Register, compose.Register, preprocessing.Register, linear_model.Register}

const (
	scaler = `{"__class__": "sklearn.preprocessing._data.StandardScaler", "n_features_in_": 2,
		"mean_": {"__ndarray__": [1.0, 0.0]}, "scale_": {"__ndarray__": [2.0, 1.0]}}`
	regressor = `{"__class__": "sklearn.linear_model._base.LinearRegression", "n_features_in_": 2,
		"coef_": {"__ndarray__": [1.0, 2.0]}, "intercept_": 0.5}`
	classifier = `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.3.2",
		"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 2,
		"coef_": {"__ndarray__": [[1.0, 2.0]]}, "intercept_": {"__ndarray__": [0.0]}, "classes_": {"__ndarray__": ["no", "yes"]}}`
)

func construct(t *testing.T, dump string) model.Step {
	t.Helper()
	return modeltest.Construct(t, modeltest.Decode(t, dump), registerAll...)
}

// encode converts e the way the converter does, honouring declared field
// names.
func encode(t *testing.T, e model.Estimator) (pmml.Model, *schema.Encoder) {
	t.Helper()
	enc, _ := modeltest.NewEncoder()
	var active, targets []string
	if h, ok := e.(model.HasActiveFields); ok {
		var err error
		active, err = h.ActiveFields()
		require.NoError(t, err)
	}
	if h, ok := e.(model.HasTargetFields); ok {
		var err error
		targets, err = h.TargetFields()
		require.NoError(t, err)
	}
	label, err := model.EncodeLabel(e, targets, enc)
	require.NoError(t, err)
	features, err := model.InitialFeatures(e, active, enc)
	require.NoError(t, err)
	m, err := model.Encode(e, schema.New(enc, label, features))
	require.NoError(t, err)
	return m, enc
}

func predictorNames(t *testing.T, m pmml.Model) []string {
	t.Helper()
	rm, ok := m.(*pmml.RegressionModel)
	require.True(t, ok)
	var out []string
	for _, p := range rm.RegressionTables[0].NumericPredictors {
		out = append(out, p.Name)
	}
	return out
}

func TestPMMLPipeline(t *testing.T) {
	dump := fmt.Sprintf(`{"__class__": "sklearn2pmml.pipeline.PMMLPipeline",
		"steps": [["scaler", %s], ["regressor", %s]],
		"active_fields": {"__ndarray__": ["a", "b"]}, "target_fields": ["price"],
		"pmml_feature_importances_": {"__ndarray__": [0.7, 0.3]}}`, scaler, regressor)
	p, ok := construct(t, dump).(*PMMLPipeline)
	require.True(t, ok)
	assert.Equal(t, model.KindRegressor, p.Kind())
	assert.Equal(t, 2, p.NumberOfFeatures())

	m, enc := encode(t, p)
	assert.Equal(t, []string{"standardScaler(a)", "b"}, predictorNames(t, m))
	assert.NotNil(t, enc.DataField("price"))
	assert.Nil(t, enc.DataField("y"))
	assert.Equal(t, map[string]float64{"a": 0.7, "b": 0.3}, enc.FeatureImportances(m))
}

func TestPMMLPipelineLegacyTargetField(t *testing.T) {
	dump := fmt.Sprintf(`{"__class__": "sklearn2pmml.pipeline.PMMLPipeline", "target_field": "label",
		"steps": [["regressor", %s]]}`, regressor)
	p := construct(t, dump).(*PMMLPipeline)
	targets, err := p.TargetFields()
	require.NoError(t, err)
	assert.Equal(t, []string{"label"}, targets)
	active, err := p.ActiveFields()
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestPipelineWithColumnTransformerHead(t *testing.T) {
	dump := fmt.Sprintf(`{"__class__": "sklearn.pipeline.Pipeline", "steps": [
		["ct", {"__class__": "sklearn.compose.ColumnTransformer", "transformers_": [["num", "passthrough", ["age", "income"]]]}],
		["clf", %s]]}`, classifier)
	p := construct(t, dump).(*Pipeline)
	assert.Equal(t, model.KindClassifier, p.Kind())
	assert.Equal(t, -1, p.NumberOfFeatures())
	assert.True(t, p.HasProbabilityDistribution())

	m, enc := encode(t, p)
	assert.Equal(t, pmml.MiningFunctionClassification, m.Base().FunctionName)
	var declared []string
	for _, df := range enc.DataFields() {
		declared = append(declared, df.Name)
	}
	assert.Equal(t, []string{"y", "age", "income"}, declared)
}

func TestPipelineAsTransformer(t *testing.T) {
	tests := []struct {
		name  string
		steps string
		want  []string
	}{
		{
			name: "chained steps",
			steps: `[["impute", {"__class__": "sklearn.impute.SimpleImputer", "strategy": "mean", "statistics_": [2.0]}],
				["scale", {"__class__": "sklearn.preprocessing.MaxAbsScaler", "scale_": {"__ndarray__": [4.0]}}]]`,
			want: []string{"maxAbsScaler(imputer(x1))"},
		},
		{
			name:  "passthrough final step",
			steps: `[["scale", {"__class__": "sklearn.preprocessing.MaxAbsScaler", "scale_": {"__ndarray__": [4.0]}}], ["final", "passthrough"]]`,
			want:  []string{"maxAbsScaler(x1)"},
		},
		{
			name:  "none step",
			steps: `[["skip", null]]`,
			want:  []string{"x1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := construct(t, `{"__class__": "sklearn.pipeline.Pipeline", "steps": `+tt.steps+`}`).(*Pipeline)
			assert.Equal(t, model.KindTransformer, p.Kind())
			enc, _ := modeltest.NewEncoder()
			enc.CreateDataField("x1", pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
			features, err := p.EncodeFeatures([]schema.Feature{schema.NewWildcardFeature("x1", pmml.DataTypeDouble)}, enc)
			require.NoError(t, err)
			var got []string
			for _, f := range features {
				got = append(got, f.Name())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipelineHead(t *testing.T) {
	dump := fmt.Sprintf(`{"__class__": "sklearn.pipeline.Pipeline", "steps": [
		["noop", "passthrough"],
		["inner", {"__class__": "sklearn.pipeline.Pipeline", "steps": [["scaler", %s]]}],
		["regressor", %s]]}`, scaler, regressor)
	p := construct(t, dump).(*Pipeline)
	head, err := p.Head()
	require.NoError(t, err)
	assert.Equal(t, "StandardScaler", head.Object().Name())
	assert.Equal(t, 2, p.NumberOfFeatures())
}

func TestPipelineErrors(t *testing.T) {
	t.Run("no steps", func(t *testing.T) {
		p := construct(t, `{"__class__": "sklearn.pipeline.Pipeline", "steps": []}`).(*Pipeline)
		_, err := p.Head()
		assert.Equal(t, errors.KindInvalidAttributeValue, errors.KindOf(err))
	})
	t.Run("classes of a regressor pipeline", func(t *testing.T) {
		p := construct(t, fmt.Sprintf(`{"__class__": "sklearn.pipeline.Pipeline", "steps": [["r", %s]]}`, regressor)).(*Pipeline)
		_, err := p.Classes()
		assert.Equal(t, errors.KindCapabilityCastFailure, errors.KindOf(err))
	})
	t.Run("estimator step in the middle", func(t *testing.T) {
		p := construct(t, fmt.Sprintf(`{"__class__": "sklearn.pipeline.Pipeline", "steps": [["r", %s], ["s", %s]]}`, regressor, scaler)).(*Pipeline)
		enc, _ := modeltest.NewEncoder()
		_, err := p.EncodeFeatures(nil, enc)
		assert.Equal(t, errors.KindCapabilityCastFailure, errors.KindOf(err))
	})
}

func TestFeatureUnion(t *testing.T) {
	u := construct(t, `{"__class__": "sklearn.pipeline.FeatureUnion", "transformer_list": [
		["scaled", {"__class__": "sklearn.preprocessing.MaxAbsScaler", "scale_": {"__ndarray__": [2.0]}}],
		["raw", "passthrough"],
		["gone", "drop"]]}`).(*FeatureUnion)
	assert.Equal(t, 1, u.NumberOfFeatures())

	enc, _ := modeltest.NewEncoder()
	enc.CreateDataField("x1", pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
	features, err := u.EncodeFeatures([]schema.Feature{schema.NewWildcardFeature("x1", pmml.DataTypeDouble)}, enc)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "maxAbsScaler(x1)", features[0].Name())
	assert.Equal(t, "x1", features[1].Name())
}
