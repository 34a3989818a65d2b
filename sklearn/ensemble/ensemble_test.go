package ensemble

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/dummy"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
	"github.com/YuminosukeSato/skpmml/sklearn/tree"
)

var registerAll = []func(*model.Registry){Register, tree.Register, dummy.Register, linear_model.Register}

// treeMember renders a fitted tree estimator. classes is a JSON list, or
// empty for regressors.
func treeMember(t *testing.T, class, classes string, features int, nodes ...modeltest.TreeNode) string {
	t.Helper()
	extra := ""
	if classes != "" {
		extra = fmt.Sprintf(`"classes_": {"__ndarray__": %s},`, classes)
	}
	return fmt.Sprintf(`{"__class__": %q, %s "n_features_in_": %d, "tree_": %s}`,
		class, extra, features, modeltest.TreeJSON(t, nodes...))
}

func stump(t *testing.T, class, classes string, features, feature int, threshold float64, left, right []float64) string {
	t.Helper()
	root := make([]float64, len(left))
	for i := range root {
		root[i] = left[i] + right[i]
	}
	return treeMember(t, class, classes, features,
		modeltest.Split(1, 2, feature, threshold, 4, root...),
		modeltest.Leaf(3, left...),
		modeltest.Leaf(1, right...),
	)
}

func segments(t *testing.T, m pmml.Model) []*pmml.Segment {
	t.Helper()
	mm, ok := m.(*pmml.MiningModel)
	require.True(t, ok, "got %T", m)
	return mm.Segmentation.Segments
}

func firstSplitField(t *testing.T, m pmml.Model) string {
	t.Helper()
	tm, ok := m.(*pmml.TreeModel)
	require.True(t, ok, "got %T", m)
	return tm.Node.Nodes[0].Predicate.(*pmml.SimplePredicate).Field
}

func outputNames(m pmml.Model) []string {
	var names []string
	if output := m.Base().Output; output != nil {
		for _, f := range output.OutputFields {
			names = append(names, f.Name)
		}
	}
	return names
}

func TestForestClassifier(t *testing.T) {
	classes := `["a", "b"]`
	dump := fmt.Sprintf(`{
		"__class__": "sklearn.ensemble._forest.RandomForestClassifier",
		"_sklearn_version": "1.3.2",
		"n_features_in_": 2,
		"classes_": {"__ndarray__": %s},
		"feature_importances_": {"__ndarray__": [0.25, 0.75]},
		"estimators_": [%s, %s]
	}`, classes,
		stump(t, "sklearn.tree._classes.DecisionTreeClassifier", classes, 2, 0, 0.5, []float64{3, 0}, []float64{0, 1}),
		stump(t, "sklearn.tree._classes.DecisionTreeClassifier", classes, 2, 1, 1.5, []float64{1, 2}, []float64{1, 0}),
	)
	e, s := modeltest.Estimator(t, dump, registerAll...)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	mm := m.(*pmml.MiningModel)
	assert.Equal(t, pmml.MiningFunctionClassification, mm.FunctionName)
	assert.Equal(t, pmml.MethodAverage, mm.Segmentation.MultipleModelMethod)
	require.Len(t, mm.Segmentation.Segments, 2)
	assert.Equal(t, "float(x1)", firstSplitField(t, mm.Segmentation.Segments[0].Model))
	assert.Equal(t, "float(x2)", firstSplitField(t, mm.Segmentation.Segments[1].Model))
	assert.Equal(t, []string{"probability(a)", "probability(b)"}, outputNames(mm))

	importances := s.Encoder().FeatureImportances(m)
	assert.Equal(t, 0.75, importances["float(x2)"])
}

func TestForestRegressorLegacyModule(t *testing.T) {
	dump := fmt.Sprintf(`{
		"__class__": "sklearn.ensemble.forest.ExtraTreesRegressor",
		"_sklearn_version": "0.20.3",
		"n_features_in_": 2,
		"estimators_": [%s]
	}`, stump(t, "sklearn.tree.tree.ExtraTreeRegressor", "", 2, 1, 0.5, []float64{1}, []float64{2}))
	e, s := modeltest.Estimator(t, dump, registerAll...)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	segs := segments(t, m)
	require.Len(t, segs, 1)
	tm := segs[0].Model.(*pmml.TreeModel)
	assert.Equal(t, pmml.MiningFunctionRegression, tm.FunctionName)
	assert.Equal(t, "2", tm.Node.Nodes[1].Score)
	assert.Nil(t, m.Base().Output)
}

func TestForestRejectsNonTreeMembers(t *testing.T) {
	dump := `{
		"__class__": "sklearn.ensemble.RandomForestRegressor",
		"n_features_in_": 1,
		"estimators_": [{"__class__": "sklearn.linear_model.LinearRegression", "coef_": [1.0], "intercept_": 0.0}]
	}`
	e, s := modeltest.Estimator(t, dump, registerAll...)
	_, err := model.Encode(e, s)
	assert.Equal(t, errors.KindCapabilityCastFailure, errors.KindOf(err))
}

func TestBaggingClassifier(t *testing.T) {
	classes := `["a", "b"]`
	ridge := `{"__class__": "sklearn.linear_model.RidgeClassifier", "n_features_in_": 1,
		"coef_": {"__ndarray__": [[1.0]]}, "intercept_": {"__ndarray__": [0.0]}, "classes_": {"__ndarray__": ["a", "b"]}}`

	tests := []struct {
		name       string
		members    []string
		features   string
		wantMethod pmml.MultipleModelMethod
		wantOutput int
	}{
		{
			name: "trees average",
			members: []string{
				stump(t, "sklearn.tree.DecisionTreeClassifier", classes, 1, 0, 0.5, []float64{2, 1}, []float64{0, 1}),
				stump(t, "sklearn.tree.DecisionTreeClassifier", classes, 1, 0, 2.5, []float64{1, 1}, []float64{1, 0}),
			},
			features:   `[{"__ndarray__": [1]}, {"__ndarray__": [0]}]`,
			wantMethod: pmml.MethodAverage,
			wantOutput: 2,
		},
		{
			name:       "non-probabilistic members vote",
			members:    []string{ridge, ridge},
			features:   `[[0], [1]]`,
			wantMethod: pmml.MethodMajorityVote,
			wantOutput: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := fmt.Sprintf(`{
				"__class__": "sklearn.ensemble._bagging.BaggingClassifier",
				"_sklearn_version": "1.3.2",
				"n_features_in_": 2,
				"classes_": {"__ndarray__": %s},
				"estimators_": [%s],
				"estimators_features_": %s
			}`, classes, strings.Join(tt.members, ", "), tt.features)
			e, s := modeltest.Estimator(t, dump, registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			assert.Equal(t, tt.wantMethod, mm.Segmentation.MultipleModelMethod)
			assert.Len(t, outputNames(mm), tt.wantOutput)
			assert.Equal(t, tt.wantMethod == pmml.MethodAverage, e.(model.Classifier).HasProbabilityDistribution())
		})
	}

	t.Run("first member sees its own feature subset", func(t *testing.T) {
		dump := fmt.Sprintf(`{
			"__class__": "sklearn.ensemble.BaggingClassifier",
			"n_features_in_": 2,
			"classes_": {"__ndarray__": %s},
			"estimators_": [%s],
			"estimators_features_": [[1]]
		}`, classes, stump(t, "sklearn.tree.DecisionTreeClassifier", classes, 1, 0, 0.5, []float64{2, 1}, []float64{0, 1}))
		e, s := modeltest.Estimator(t, dump, registerAll...)
		m, err := model.Encode(e, s)
		require.NoError(t, err)
		assert.Equal(t, "float(x2)", firstSplitField(t, segments(t, m)[0].Model))
	})

	t.Run("feature index out of range", func(t *testing.T) {
		dump := fmt.Sprintf(`{
			"__class__": "sklearn.ensemble.BaggingClassifier",
			"n_features_in_": 2,
			"classes_": {"__ndarray__": %s},
			"estimators_": [%s],
			"estimators_features_": [[5]]
		}`, classes, ridge)
		e, s := modeltest.Estimator(t, dump, registerAll...)
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindInvalidAttributeValue, errors.KindOf(err))
	})
}

func boostingTrees(t *testing.T, columns int) string {
	t.Helper()
	row := make([]string, columns)
	for k := range row {
		row[k] = stump(t, "sklearn.tree._classes.DecisionTreeRegressor", "", 2, k%2, 0.5, []float64{-1}, []float64{1})
	}
	return fmt.Sprintf(`{"__ndarray__": [[%s]], "dtype": "object"}`, strings.Join(row, ", "))
}

func TestGradientBoostingRegressor(t *testing.T) {
	tests := []struct {
		name        string
		init        string
		wantInitial float64
	}{
		{"dummy", `{"__class__": "sklearn.dummy.DummyRegressor", "strategy": "mean", "constant_": {"__ndarray__": [[3.0]]}}`, 3},
		{"legacy mean", `{"__class__": "sklearn.ensemble.gradient_boosting.MeanEstimator", "mean": 2.5}`, 2.5},
		{"zero", `"zero"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := fmt.Sprintf(`{
				"__class__": "sklearn.ensemble._gb.GradientBoostingRegressor",
				"_sklearn_version": "1.2.2",
				"n_features_in_": 2,
				"learning_rate": 0.1,
				"init_": %s,
				"estimators_": %s
			}`, tt.init, boostingTrees(t, 1))
			e, s := modeltest.Estimator(t, dump, registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			assert.Equal(t, pmml.MethodSum, mm.Segmentation.MultipleModelMethod)
			require.Len(t, mm.Segmentation.Segments, 1)
			require.NotNil(t, mm.Targets)
			target := mm.Targets.Targets[0]
			assert.Equal(t, "y", target.Field)
			assert.Equal(t, 0.1, *target.RescaleFactor)
			assert.Equal(t, tt.wantInitial, *target.RescaleConstant)
		})
	}
}

func binaryBoostingDump(t *testing.T, loss string) string {
	return fmt.Sprintf(`{
		"__class__": "sklearn.ensemble._gb.GradientBoostingClassifier",
		"_sklearn_version": "1.4.0",
		"n_features_in_": 2,
		"loss": %q,
		"learning_rate": 0.5,
		"classes_": {"__ndarray__": ["no", "yes"]},
		"init_": {"__class__": "sklearn.dummy.DummyClassifier", "strategy": "prior",
			"classes_": {"__ndarray__": ["no", "yes"]}, "class_prior_": {"__ndarray__": [0.25, 0.75]}},
		"estimators_": %s
	}`, loss, boostingTrees(t, 1))
}

func TestGradientBoostingBinary(t *testing.T) {
	tests := []struct {
		loss            string
		wantInitial     float64
		wantCoefficient float64
	}{
		{"log_loss", math.Log(3), 1},
		{"exponential", math.Log(3) / 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.loss, func(t *testing.T) {
			e, s := modeltest.Estimator(t, binaryBoostingDump(t, tt.loss), registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			assert.Equal(t, pmml.MethodModelChain, mm.Segmentation.MultipleModelMethod)
			segs := mm.Segmentation.Segments
			require.Len(t, segs, 2)

			boosted := segs[0].Model.(*pmml.MiningModel)
			assert.InDelta(t, tt.wantInitial, *boosted.Targets.Targets[0].RescaleConstant, 1e-6)
			assert.Empty(t, boosted.Targets.Targets[0].Field)
			assert.Equal(t, []string{"decisionFunction(yes)"}, outputNames(boosted))

			final := segs[1].Model.(*pmml.RegressionModel)
			assert.Equal(t, pmml.NormalizationLogit, final.NormalizationMethod)
			assert.Equal(t, "yes", final.RegressionTables[0].TargetCategory)
			assert.Equal(t, tt.wantCoefficient, final.RegressionTables[0].NumericPredictors[0].Coefficient)

			assert.Equal(t, []string{"probability(no)", "probability(yes)"}, outputNames(mm))
		})
	}
}

func TestGradientBoostingMulticlass(t *testing.T) {
	dump := fmt.Sprintf(`{
		"__class__": "sklearn.ensemble.GradientBoostingClassifier",
		"_sklearn_version": "1.3.2",
		"n_features_in_": 2,
		"loss": "log_loss",
		"learning_rate": 0.1,
		"classes_": {"__ndarray__": ["a", "b", "c"]},
		"init_": "zero",
		"estimators_": %s
	}`, boostingTrees(t, 3))
	e, s := modeltest.Estimator(t, dump, registerAll...)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	segs := segments(t, m)
	require.Len(t, segs, 4)
	for k, class := range []string{"a", "b", "c"} {
		assert.Equal(t, []string{"decisionFunction(" + class + ")"}, outputNames(segs[k].Model))
	}
	assert.Equal(t, "float(x2)", firstSplitField(t, segments(t, segs[1].Model)[0].Model))
	assert.Equal(t, pmml.NormalizationSoftmax, segs[3].Model.(*pmml.RegressionModel).NormalizationMethod)

	t.Run("column count mismatch", func(t *testing.T) {
		bad := strings.Replace(dump, boostingTrees(t, 3), boostingTrees(t, 2), 1)
		e, s := modeltest.Estimator(t, bad, registerAll...)
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindSchemaSizeMismatch, errors.KindOf(err))
	})
}

func TestInitialPredictions(t *testing.T) {
	priors := []float64{0.2, 0.3, 0.5}
	logs := []float64{math.Log(0.2), math.Log(0.3), math.Log(0.5)}
	mean := (logs[0] + logs[1] + logs[2]) / 3

	dummyInit := `{"__class__": "sklearn.dummy.DummyClassifier", "strategy": "prior",
		"classes_": {"__ndarray__": ["a", "b", "c"]}, "class_prior_": {"__ndarray__": [0.2, 0.3, 0.5]}}`
	legacyInit := `{"__class__": "sklearn.ensemble.gradient_boosting.PriorProbabilityEstimator", "priors": [0.2, 0.3, 0.5]}`

	tests := []struct {
		name    string
		version string
		init    string
		want    []float64
	}{
		{"raw priors", "0.20.3", legacyInit, priors},
		{"loss computed", "1.2.2", dummyInit, logs},
		{"link computed", "1.4.0", dummyInit, []float64{logs[0] - mean, logs[1] - mean, logs[2] - mean}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := modeltest.Decode(t, fmt.Sprintf(`{
				"__class__": "sklearn.ensemble.GradientBoostingClassifier",
				"_sklearn_version": %q,
				"classes_": {"__ndarray__": ["a", "b", "c"]},
				"init_": %s
			}`, tt.version, tt.init))
			c := modeltest.Construct(t, obj, registerAll...).(*GradientBoostingClassifier)
			got, err := c.initialPredictions(3, lossLogLoss)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestAveragePathLength(t *testing.T) {
	const gamma = 0.5772156649015329
	assert.Equal(t, 1.0, AveragePathLength(1))
	assert.InDelta(t, 2*(math.Log(255)+gamma)-2*255.0/256, CorrectedAveragePathLength(256, true), 1e-9)
	assert.InDelta(t, 2*(math.Log(255)+gamma)-2*255.0/256, CorrectedAveragePathLength(256, false), 1e-9)

	tests := []struct {
		n                   float64
		nodeSampleCorrected bool
		want                float64
	}{
		{1, true, 0},
		{2, true, 1},
		{1, false, 1},
		{0, false, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%v corrected=%v", tt.n, tt.nodeSampleCorrected), func(t *testing.T) {
			assert.Equal(t, tt.want, CorrectedAveragePathLength(tt.n, tt.nodeSampleCorrected))
		})
	}
}

func isolationForestDump(t *testing.T, version, extra string) string {
	member := treeMember(t, "sklearn.tree._classes.ExtraTreeRegressor", "", 2,
		modeltest.Split(1, 2, 0, 0.5, 4, 1.0),
		modeltest.Leaf(3, 1.0),
		modeltest.Leaf(1, 1.0),
	)
	return fmt.Sprintf(`{
		"__class__": "sklearn.ensemble._iforest.IsolationForest",
		"_sklearn_version": %q,
		"n_features_in_": 2,
		"max_samples_": 4,
		%s
		"estimators_": [%s],
		"estimators_features_": [{"__ndarray__": [1, 0]}]
	}`, version, extra, member)
}

func TestIsolationForest(t *testing.T) {
	e, s := modeltest.Estimator(t, isolationForestDump(t, "1.3.2", `"offset_": -0.6,`), registerAll...)
	assert.Equal(t, model.KindOutlierDetector, e.Kind())
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	mm := m.(*pmml.MiningModel)
	assert.Equal(t, pmml.MiningFunctionRegression, mm.FunctionName)
	assert.Equal(t, pmml.MethodAverage, mm.Segmentation.MultipleModelMethod)

	tm := mm.Segmentation.Segments[0].Model.(*pmml.TreeModel)
	assert.Equal(t, "float(x2)", firstSplitField(t, tm))
	assert.Equal(t, pmml.FormatNumber(CorrectedAveragePathLength(4, true)), tm.Node.Score)
	assert.Equal(t, pmml.FormatNumber(1+CorrectedAveragePathLength(3, true)), tm.Node.Nodes[0].Score)
	assert.Equal(t, "1", tm.Node.Nodes[1].Score)

	assert.Equal(t, []string{"rawAnomalyScore", "normalizedAnomalyScore", "decisionFunction", "outlier", "predict"}, outputNames(mm))
	fields := mm.Output.OutputFields
	normalized := fields[1].Expression.(*pmml.Apply)
	assert.Equal(t, pmml.FormatNumber(CorrectedAveragePathLength(4, true)), normalized.Expressions[1].(*pmml.Constant).Value)
	decision := fields[2]
	assert.True(t, *decision.IsFinalResult)
	assert.Equal(t, "0.6", decision.Expression.(*pmml.Apply).Expressions[0].(*pmml.Constant).Value)
	outlier := fields[3].Expression.(*pmml.Apply)
	assert.Equal(t, "lessOrEqual", outlier.Function)
	assert.Equal(t, "0", outlier.Expressions[1].(*pmml.Constant).Value)
}

func TestIsolationForestVersions(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		extra         string
		wantRoot      float64
		wantThreshold string
		wantOffset    string
	}{
		{"uncorrected", "0.18.2", `"threshold_": -0.25,`, AveragePathLength(4), "-0.25", "-0.5"},
		{"old behaviour", "0.20.3", `"behaviour": "old", "_threshold_": -0.1, "offset_": -0.4,`, CorrectedAveragePathLength(4, false), "-0.1", "0.4"},
		{"new behaviour", "0.20.3", `"behaviour": "new", "_threshold_": -0.1, "offset_": -0.4,`, CorrectedAveragePathLength(4, false), "0", "0.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := modeltest.Estimator(t, isolationForestDump(t, tt.version, tt.extra), registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			tm := mm.Segmentation.Segments[0].Model.(*pmml.TreeModel)
			assert.Equal(t, pmml.FormatNumber(tt.wantRoot), tm.Node.Score)
			fields := mm.Output.OutputFields
			assert.Equal(t, tt.wantOffset, fields[2].Expression.(*pmml.Apply).Expressions[0].(*pmml.Constant).Value)
			assert.Equal(t, tt.wantThreshold, fields[3].Expression.(*pmml.Apply).Expressions[1].(*pmml.Constant).Value)
		})
	}
}

func linearRegression(coef string, intercept float64) string {
	return fmt.Sprintf(`{"__class__": "sklearn.linear_model._base.LinearRegression", "n_features_in_": 2,
		"coef_": {"__ndarray__": %s}, "intercept_": %v}`, coef, intercept)
}

func logisticRegression(coef string) string {
	return fmt.Sprintf(`{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.3.2",
		"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 2,
		"coef_": {"__ndarray__": %s}, "intercept_": {"__ndarray__": [0.0]}, "classes_": {"__ndarray__": ["no", "yes"]}}`, coef)
}

func TestVotingClassifier(t *testing.T) {
	tests := []struct {
		name        string
		voting      string
		weights     string
		estimators  string
		wantMethod  pmml.MultipleModelMethod
		wantWeights []float64
		wantOutput  int
	}{
		{"hard weighted", "hard", "[1, 2, 1]", "null", pmml.MethodWeightedMajorityVote, []float64{1, 2, 1}, 0},
		{"soft", "soft", "null", "null", pmml.MethodAverage, nil, 2},
		{
			"dropped member weight removed", "soft", "[1, 5, 2, 3]",
			`[["a", {"__class__": "x.A"}], ["b", "drop"], ["c", {"__class__": "x.C"}], ["d", {"__class__": "x.D"}]]`,
			pmml.MethodWeightedAverage, []float64{1, 2, 3}, 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := logisticRegression("[[1.0, 2.0]]")
			dump := fmt.Sprintf(`{
				"__class__": "sklearn.ensemble._voting.VotingClassifier",
				"_sklearn_version": "1.3.2",
				"n_features_in_": 2,
				"voting": %q,
				"weights": %s,
				"estimators": %s,
				"classes_": {"__ndarray__": ["no", "yes"]},
				"estimators_": [%s, %s, %s]
			}`, tt.voting, tt.weights, tt.estimators, lr, lr, lr)
			e, s := modeltest.Estimator(t, dump, registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			assert.Equal(t, tt.wantMethod, mm.Segmentation.MultipleModelMethod)
			for i, seg := range mm.Segmentation.Segments {
				if tt.wantWeights == nil {
					assert.Nil(t, seg.Weight)
					continue
				}
				assert.Equal(t, tt.wantWeights[i], *seg.Weight)
			}
			assert.Len(t, outputNames(mm), tt.wantOutput)
		})
	}

	t.Run("soft voting needs probabilities", func(t *testing.T) {
		ridge := `{"__class__": "sklearn.linear_model.RidgeClassifier", "n_features_in_": 2,
			"coef_": {"__ndarray__": [[1.0, 1.0]]}, "intercept_": {"__ndarray__": [0.0]}, "classes_": {"__ndarray__": ["no", "yes"]}}`
		dump := fmt.Sprintf(`{
			"__class__": "sklearn.ensemble.VotingClassifier",
			"n_features_in_": 2,
			"voting": "soft",
			"classes_": {"__ndarray__": ["no", "yes"]},
			"estimators_": [%s]
		}`, ridge)
		e, s := modeltest.Estimator(t, dump, registerAll...)
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindCapabilityCastFailure, errors.KindOf(err))
	})
}

func TestVotingRegressor(t *testing.T) {
	dump := fmt.Sprintf(`{
		"__class__": "sklearn.ensemble.VotingRegressor",
		"n_features_in_": 2,
		"weights": [0.25, 0.75],
		"estimators_": [%s, %s]
	}`, linearRegression("[1.0, 2.0]", 0.5), linearRegression("[3.0, 4.0]", 0))
	e, s := modeltest.Estimator(t, dump, registerAll...)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	mm := m.(*pmml.MiningModel)
	assert.Equal(t, pmml.MethodWeightedAverage, mm.Segmentation.MultipleModelMethod)
	assert.Equal(t, 0.75, *mm.Segmentation.Segments[1].Weight)
}

func TestStackingRegressor(t *testing.T) {
	tests := []struct {
		name        string
		passthrough bool
		finalCoef   string
		wantInputs  []string
	}{
		{"stacked predictions", false, "[0.5, 0.5]", []string{"predict(0)", "predict(1)"}},
		{"passthrough", true, "[0.5, 0.5, 1.0, 1.0]", []string{"predict(0)", "predict(1)", "x1", "x2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final := fmt.Sprintf(`{"__class__": "sklearn.linear_model.LinearRegression", "n_features_in_": %d,
				"coef_": {"__ndarray__": %s}, "intercept_": 0.0}`, len(tt.wantInputs), tt.finalCoef)
			dump := fmt.Sprintf(`{
				"__class__": "sklearn.ensemble._stacking.StackingRegressor",
				"n_features_in_": 2,
				"passthrough": %v,
				"estimators_": [%s, "drop", %s],
				"stack_method_": ["predict", "drop", "predict"],
				"final_estimator_": %s
			}`, tt.passthrough, linearRegression("[1.0, 2.0]", 0.5), linearRegression("[3.0, 4.0]", 0), final)
			e, s := modeltest.Estimator(t, dump, registerAll...)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm := m.(*pmml.MiningModel)
			assert.Equal(t, pmml.MethodModelChain, mm.Segmentation.MultipleModelMethod)
			segs := mm.Segmentation.Segments
			require.Len(t, segs, 3)
			assert.Equal(t, []string{"predict(0)"}, outputNames(segs[0].Model))

			var inputs []string
			for _, p := range segs[2].Model.(*pmml.RegressionModel).RegressionTables[0].NumericPredictors {
				inputs = append(inputs, p.Name)
			}
			assert.Equal(t, tt.wantInputs, inputs)
		})
	}
}

func TestStackingClassifier(t *testing.T) {
	final := `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.3.2",
		"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 2,
		"coef_": {"__ndarray__": [[2.0, -1.0]]}, "intercept_": {"__ndarray__": [0.1]}, "classes_": {"__ndarray__": [0, 1]}}`
	dump := fmt.Sprintf(`{
		"__class__": "sklearn.ensemble.StackingClassifier",
		"n_features_in_": 2,
		"classes_": {"__ndarray__": ["no", "yes"]},
		"estimators_": [%s, %s],
		"stack_method_": ["predict_proba", "predict_proba"],
		"final_estimator_": %s
	}`, logisticRegression("[[1.0, 2.0]]"), logisticRegression("[[-1.0, 0.5]]"), final)
	e, s := modeltest.Estimator(t, dump, registerAll...)
	m, err := model.Encode(e, s)
	require.NoError(t, err)

	segs := segments(t, m)
	require.Len(t, segs, 3)
	assert.Contains(t, outputNames(segs[0].Model), "probability(0, yes)")
	assert.NotContains(t, outputNames(segs[0].Model), "probability(0, no)")
	assert.Contains(t, outputNames(segs[1].Model), "probability(1, yes)")
	assert.Equal(t, []string{"probability(no)", "probability(yes)"}, outputNames(m))

	t.Run("decision function is not stacked", func(t *testing.T) {
		bad := strings.Replace(dump, `["predict_proba", "predict_proba"]`, `["decision_function", "predict_proba"]`, 1)
		e, s := modeltest.Estimator(t, bad, registerAll...)
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindUnsupportedAlgorithmVariant, errors.KindOf(err))
	})
}
