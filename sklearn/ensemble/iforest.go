package ensemble

import (
	"math"

	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/tree"
)

// Output fields of an isolation forest.
const (
	FieldRawAnomalyScore        = "rawAnomalyScore"
	FieldNormalizedAnomalyScore = "normalizedAnomalyScore"
	FieldOutlier                = "outlier"
)

const eulerGamma = 0.5772156649015329

// IsolationForest encodes the anomaly score of an isolation forest as the
// average path length over its trees.
type IsolationForest struct {
	model.Base
}

func NewIsolationForest(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &IsolationForest{Base: model.NewBase(obj, r)}, nil
}

func (f *IsolationForest) Kind() model.Kind { return model.KindOutlierDetector }

func (f *IsolationForest) MiningFunction() pmml.MiningFunction {
	return pmml.MiningFunctionRegression
}

// pathLength returns the path length formula for the recorded release.
// 0.19 corrected the harmonic number estimate, 0.21 the small-sample
// cases.
func (f *IsolationForest) pathLength() func(n float64) float64 {
	v := f.Version()
	if !v.AtLeast(version.IsolationForestCorrected) {
		return AveragePathLength
	}
	nodeSampleCorrected := v.AtLeast(version.IsolationForestNodeSamples)
	return func(n float64) float64 {
		return CorrectedAveragePathLength(n, nodeSampleCorrected)
	}
}

func (f *IsolationForest) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	members, err := trees(&f.Base, "estimators_")
	if err != nil {
		return nil, err
	}
	subsets, err := featureSubsets(&f.Base, len(members), s.NumberOfFeatures())
	if err != nil {
		return nil, err
	}
	maxSamples, err := f.Object().GetInteger("max_samples_")
	if err != nil {
		return nil, err
	}
	offset := 0.5
	if f.Object().Has("offset_") {
		if offset, err = f.Object().GetNumber("offset_"); err != nil {
			return nil, err
		}
	}
	threshold, err := f.threshold()
	if err != nil {
		return nil, err
	}

	apl := f.pathLength()
	opts := tree.DefaultOptions(&f.Base)
	opts.Scorer = func(t *tree.Tree, index, depth int) (float64, error) {
		if t.NodeSamples == nil {
			return 0, errors.NewAttributeMissingError("sklearn.tree._tree.Tree", "n_node_samples")
		}
		return float64(depth) + apl(float64(t.NodeSamples[index])), nil
	}
	models, err := encodeTrees(&f.Base, members, pmml.MiningFunctionRegression, s.ToAnonymous(), subsets, opts)
	if err != nil {
		return nil, err
	}
	mm, err := ens.Compose(pmml.MiningFunctionRegression, s.Label(), pmml.MethodAverage, models, nil)
	if err != nil {
		return nil, err
	}

	decisionFunction := modelgraph.TransformedField(modelgraph.FieldDecisionFunction, pmml.OpTypeContinuous, pmml.DataTypeDouble,
		pmml.NewApply("-",
			pmml.NewConstant(-offset),
			pmml.NewApply("pow", pmml.NewConstant(2), pmml.NewApply("*", pmml.NewConstant(-1), pmml.NewFieldRef(FieldNormalizedAnomalyScore))),
		))
	decisionFunction.IsFinalResult = pmml.Bool(true)
	modelgraph.AddOutputFields(mm,
		modelgraph.PredictedField(FieldRawAnomalyScore, pmml.OpTypeContinuous, pmml.DataTypeDouble),
		modelgraph.TransformedField(FieldNormalizedAnomalyScore, pmml.OpTypeContinuous, pmml.DataTypeDouble,
			pmml.NewApply("/", pmml.NewFieldRef(FieldRawAnomalyScore), pmml.NewConstant(apl(float64(maxSamples))))),
		decisionFunction,
		modelgraph.TransformedField(FieldOutlier, pmml.OpTypeCategorical, pmml.DataTypeBoolean,
			pmml.NewApply("lessOrEqual", pmml.NewFieldRef(modelgraph.FieldDecisionFunction), pmml.NewConstant(threshold))),
		modelgraph.TransformedField(modelgraph.FieldPredict, pmml.OpTypeCategorical, pmml.DataTypeInteger,
			pmml.NewApply("if", pmml.NewFieldRef(FieldOutlier), pmml.NewConstant(-1), pmml.NewConstant(1))),
	)
	return mm, nil
}

// threshold is the decision function value at or below which a sample is
// an outlier. Only the old behaviour, and releases without a behaviour
// setting, learn one.
func (f *IsolationForest) threshold() (float64, error) {
	if f.Object().GetOptional("behaviour") != nil {
		behaviour, err := f.Object().GetEnum("behaviour", "old", "new", "deprecated")
		if err != nil {
			return 0, err
		}
		if behaviour != "old" {
			return 0, nil
		}
	}
	for _, name := range []string{"threshold_", "_threshold_"} {
		if f.Object().Has(name) {
			return f.Object().GetNumber(name)
		}
	}
	return 0, nil
}

func (f *IsolationForest) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return tree.ConfigureSchema(f, s)
}

func (f *IsolationForest) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return tree.ConfigureModel(f, m, s), nil
}

// AveragePathLength is the uncorrected expected path length of an
// unsuccessful search in a binary search tree of n samples.
func AveragePathLength(n float64) float64 {
	if n <= 1 {
		return 1
	}
	return 2*(math.Log(n)+0.5772156649) - 2*((n-1)/n)
}

// CorrectedAveragePathLength uses the harmonic number H(n-1). With
// nodeSampleCorrected, nodes of one or two samples get exact lengths.
func CorrectedAveragePathLength(n float64, nodeSampleCorrected bool) float64 {
	if nodeSampleCorrected {
		if n <= 1 {
			return 0
		}
		if n <= 2 {
			return 1
		}
	} else if n <= 1 {
		return 1
	}
	return 2*(math.Log(n-1)+eulerGamma) - 2*((n-1)/n)
}
