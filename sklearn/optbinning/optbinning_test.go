package optbinning

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
)

const numericalDump = `{
	"__class__": "optbinning.binning.binning.OptimalBinning",
	"dtype": "numerical",
	"metric": "event_rate",
	"special_codes": [-9],
	"_splits_optimal": {"__ndarray__": [1.0, 2.0]},
	"_n_event": {"__ndarray__": [1, 2, 3, 0, 0]},
	"_n_nonevent": {"__ndarray__": [3, 2, 1, 0, 0]}
}`

func encodeBinning(t *testing.T, dump string, feature schema.Feature) (*schema.BinnedFeature, *schema.Encoder) {
	t.Helper()
	tr := modeltest.Construct(t, modeltest.Decode(t, dump), Register).(model.Transformer)
	enc, _ := modeltest.NewEncoder()
	enc.CreateDataField(feature.Name(), pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
	out, err := tr.EncodeFeatures([]schema.Feature{feature}, enc)
	require.NoError(t, err)
	require.Len(t, out, 1)
	bf, ok := out[0].(*schema.BinnedFeature)
	require.True(t, ok)
	return bf, enc
}

func TestNumericalBinning(t *testing.T) {
	bf, enc := encodeBinning(t, numericalDump, schema.NewWildcardFeature("x1", pmml.DataTypeDouble))
	assert.Equal(t, "optBinning(x1)", bf.Name())

	bins := bf.Bins()
	require.Len(t, bins, 5)
	assert.Equal(t, "0.25", bins[0].Label)
	assert.Equal(t, &pmml.SimplePredicate{Field: "x1", Operator: pmml.OpLessThan, Value: "1"}, bins[0].Predicate)
	assert.Equal(t, &pmml.CompoundPredicate{BooleanOperator: pmml.BoolAnd, Predicates: []pmml.Predicate{
		&pmml.SimplePredicate{Field: "x1", Operator: pmml.OpGreaterOrEqual, Value: "1"},
		&pmml.SimplePredicate{Field: "x1", Operator: pmml.OpLessThan, Value: "2"},
	}}, bins[1].Predicate)
	assert.Equal(t, &pmml.SimplePredicate{Field: "x1", Operator: pmml.OpGreaterOrEqual, Value: "2"}, bins[2].Predicate)
	assert.Equal(t, &pmml.SimplePredicate{Field: "x1", Operator: pmml.OpEqual, Value: "-9"}, bins[3].Predicate)
	assert.Equal(t, &pmml.SimplePredicate{Field: "x1", Operator: pmml.OpIsMissing}, bins[4].Predicate)

	df := enc.DerivedField("optBinning(x1)")
	require.NotNil(t, df)
	assert.Equal(t, pmml.OpTypeCategorical, df.OpType)
	special := df.Expression.(*pmml.Apply)
	assert.Equal(t, "if", special.Function)
	condition := special.Expressions[0].(*pmml.Apply)
	assert.Equal(t, "isIn", condition.Function)
	assert.Equal(t, "0", condition.MapMissingTo)

	discretize := special.Expressions[2].(*pmml.Discretize)
	require.Len(t, discretize.Bins, 3)
	assert.Equal(t, "0.75", discretize.Bins[2].BinValue)
	assert.Equal(t, 2.0, *discretize.Bins[2].Interval.LeftMargin)
	assert.Nil(t, discretize.Bins[2].Interval.RightMargin)
	assert.Equal(t, pmml.OpTypeContinuous, enc.DataField("x1").OpType)
}

func TestWeightOfEvidence(t *testing.T) {
	dump := `{
		"__class__": "optbinning.OptimalBinning",
		"dtype": "numerical",
		"_splits_optimal": [1.0],
		"_n_event": [1, 3, 0, 0],
		"_n_nonevent": [3, 1, 0, 0]
	}`
	bf, _ := encodeBinning(t, dump, schema.NewWildcardFeature("x1", pmml.DataTypeDouble))
	bins := bf.Bins()
	require.Len(t, bins, 4)
	// woe = ln(1/rate - 1) + ln(events/non-events)
	constant := math.Log(4.0 / 4.0)
	for i, rate := range []float64{0.25, 0.75} {
		woe, err := strconv.ParseFloat(bins[i].Label, 64)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(1/rate-1)+constant, woe, 1e-12, "bin %d", i)
	}
	assert.Nil(t, bins[2].Predicate, "no special codes")
}

func TestCategoricalBinning(t *testing.T) {
	dump := `{
		"__class__": "optbinning.OptimalBinning",
		"dtype": "categorical",
		"metric": "event_rate",
		"_categories": {"__ndarray__": ["a", "b", "c"]},
		"_splits_optimal": [1.5],
		"_n_event": [1, 1, 0, 0],
		"_n_nonevent": [1, 3, 0, 0]
	}`
	bf, enc := encodeBinning(t, dump, schema.NewWildcardFeature("color", pmml.DataTypeDouble))
	bins := bf.Bins()
	require.Len(t, bins, 4)
	assert.Equal(t, "0.5", bins[0].Label)
	set := bins[0].Predicate.(*pmml.SimpleSetPredicate)
	assert.Equal(t, "a b", set.Array.Value)
	assert.Equal(t, &pmml.SimplePredicate{Field: "color", Operator: pmml.OpEqual, Value: "c"}, bins[1].Predicate)

	mv := enc.DerivedField("optBinning(color)").Expression.(*pmml.MapValues)
	require.Len(t, mv.InlineTable.Rows, 3)
	assert.Equal(t, "0.25", mv.InlineTable.Rows[2].Cells[1].Value)
	assert.Equal(t, pmml.DataTypeString, enc.DataField("color").DataType)
	assert.Equal(t, pmml.OpTypeCategorical, enc.DataField("color").OpType)
}

func TestBinningWithoutSplits(t *testing.T) {
	dump := `{
		"__class__": "optbinning.OptimalBinning",
		"dtype": "numerical",
		"metric": "event_rate",
		"_splits_optimal": [],
		"_n_event": [1, 0, 0],
		"_n_nonevent": [1, 0, 0]
	}`
	bf, enc := encodeBinning(t, dump, schema.NewWildcardFeature("x1", pmml.DataTypeDouble))
	require.Len(t, bf.Bins(), 3)
	assert.Equal(t, &pmml.SimplePredicate{Field: "x1", Operator: pmml.OpIsNotMissing}, bf.Bins()[0].Predicate)
	apply := enc.DerivedField("optBinning(x1)").Expression.(*pmml.Apply)
	assert.Equal(t, "if", apply.Function)
	assert.Equal(t, "isNotMissing", apply.Expressions[0].(*pmml.Apply).Function)
}

func TestBinningErrors(t *testing.T) {
	tests := []struct {
		name     string
		attrs    string
		wantKind errors.Kind
	}{
		{"unsorted splits", `"dtype": "numerical", "_splits_optimal": [2.0, 1.0], "_n_event": [1, 1, 1, 0, 0], "_n_nonevent": [1, 1, 1, 0, 0]`, errors.KindInvalidAttributeValue},
		{"category count", `"dtype": "numerical", "_splits_optimal": [1.0], "_n_event": [1, 1], "_n_nonevent": [1, 1]`, errors.KindSchemaSizeMismatch},
		{"unknown dtype", `"dtype": "text", "_splits_optimal": [], "_n_event": [1, 0, 0], "_n_nonevent": [1, 0, 0]`, errors.KindInvalidAttributeValue},
		{"unknown metric", `"dtype": "numerical", "metric": "iv", "_splits_optimal": [], "_n_event": [1, 0, 0], "_n_nonevent": [1, 0, 0]`, errors.KindInvalidAttributeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := modeltest.Decode(t, fmt.Sprintf(`{"__class__": "optbinning.OptimalBinning", %s}`, tt.attrs))
			tr := modeltest.Construct(t, obj, Register).(model.Transformer)
			enc, _ := modeltest.NewEncoder()
			_, err := tr.EncodeFeatures([]schema.Feature{schema.NewWildcardFeature("x1", pmml.DataTypeDouble)}, enc)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))
		})
	}
}

func scorecardDump(scaling, estimator string) string {
	return fmt.Sprintf(`{
		"__class__": "optbinning.scorecard.scorecard.Scorecard",
		%s
		"intercept_": 1.5,
		"estimator_": %s,
		"_df_scorecard": {"Variable": ["age", "age", "age", "age"], "Points": [10.0, 20.0, 99.0, 5.0]},
		"binning_process_": {
			"__class__": "optbinning.binning.binning_process.BinningProcess",
			"variable_names": ["age", "ignored"],
			"_support": [true, false],
			"binning_transform_params": {"age": {"metric": "event_rate"}},
			"_binned_variables": {
				"age": {
					"__class__": "optbinning.binning.binning.OptimalBinning",
					"dtype": "numerical",
					"_splits_optimal": [30.0],
					"_n_event": [1, 3, 0, 0],
					"_n_nonevent": [3, 1, 0, 0]
				}
			}
		}
	}`, scaling, estimator)
}

const binnedRegressor = `{"__class__": "sklearn.linear_model.LinearRegression", "coef_": {"__ndarray__": [2.0]}, "intercept_": 0.5}`

func TestScorecard(t *testing.T) {
	e, s := modeltest.Estimator(t, scorecardDump(`"scaling_method": "min_max",`, binnedRegressor), Register, linear_model.Register)
	assert.Equal(t, model.KindRegressor, e.Kind())
	assert.Empty(t, s.Features())

	m, err := model.Encode(e, s)
	require.NoError(t, err)
	sc := m.(*pmml.Scorecard)
	assert.Equal(t, 1.5, sc.InitialScore)
	assert.False(t, sc.UseReasonCodes)
	require.Len(t, sc.Characteristics.Characteristics, 1)

	c := sc.Characteristics.Characteristics[0]
	assert.Equal(t, "optBinning(age)", c.Name)
	require.Len(t, c.Attributes, 3)
	assert.Equal(t, []float64{10, 20, 5}, []float64{c.Attributes[0].PartialScore, c.Attributes[1].PartialScore, c.Attributes[2].PartialScore})
	assert.Equal(t, &pmml.SimplePredicate{Field: "age", Operator: pmml.OpIsMissing}, c.Attributes[2].Predicate)

	enc := s.Encoder()
	assert.NotNil(t, enc.DataField("age"))
	assert.Nil(t, enc.DataField("ignored"))
	// event_rate from the transform parameters
	discretize := enc.DerivedField("optBinning(age)").Expression.(*pmml.Discretize)
	assert.Equal(t, "0.25", discretize.Bins[0].BinValue)
}

func TestScorecardDelegatesWithoutScaling(t *testing.T) {
	e, s := modeltest.Estimator(t, scorecardDump("", binnedRegressor), Register, linear_model.Register)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	rm, ok := m.(*pmml.RegressionModel)
	require.True(t, ok)
	require.Len(t, rm.RegressionTables[0].NumericPredictors, 1)
	assert.Equal(t, "double(optBinning(age))", rm.RegressionTables[0].NumericPredictors[0].Name)
	assert.Equal(t, 2.0, rm.RegressionTables[0].NumericPredictors[0].Coefficient)
}

func TestScorecardErrors(t *testing.T) {
	t.Run("scaled classifier", func(t *testing.T) {
		classifier := `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.3.2",
			"multi_class": "auto", "solver": "lbfgs", "coef_": {"__ndarray__": [[1.0]]}, "intercept_": {"__ndarray__": [0.0]}, "classes_": {"__ndarray__": [0, 1]}}`
		e, s := modeltest.Estimator(t, scorecardDump(`"scaling_method": "pdo_odds",`, classifier), Register, linear_model.Register)
		assert.Equal(t, model.KindClassifier, e.Kind())
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindUnsupportedAlgorithmVariant, errors.KindOf(err))
	})

	t.Run("points mismatch", func(t *testing.T) {
		dump := scorecardDump(`"scaling_method": "min_max",`, binnedRegressor)
		obj := modeltest.Decode(t, dump)
		table, err := obj.GetDict("_df_scorecard")
		require.NoError(t, err)
		table.Values["Points"] = []any{1.0, 2.0}
		e := modeltest.Construct(t, obj, Register, linear_model.Register).(model.Estimator)
		enc, _ := modeltest.NewEncoder()
		_, err = model.Encode(e, modeltest.Schema(t, e, enc))
		assert.Equal(t, errors.KindSchemaSizeMismatch, errors.KindOf(err))
	})
}
