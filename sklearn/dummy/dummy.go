// Package dummy encodes constant-prediction estimators. They are mostly seen
// as the init_ estimator of gradient boosting ensembles.
package dummy

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	strategyPrior        = "prior"
	strategyMostFrequent = "most_frequent"
	strategyConstant     = "constant"
	strategyMean         = "mean"
	strategyMedian       = "median"
	strategyQuantile     = "quantile"
)

// Classifier encodes DummyClassifier as a single-node TreeModel.
type Classifier struct {
	model.ClassifierBase
}

func NewClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Classifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *Classifier) strategy() (string, error) {
	return c.Object().GetEnum("strategy", strategyPrior, strategyMostFrequent, strategyConstant, "stratified", "uniform")
}

func (c *Classifier) classPrior() ([]float64, error) {
	prior, err := c.Object().GetNumberArray("class_prior_")
	if err != nil {
		return nil, err
	}
	classes, err := c.Classes()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(c.TypeKey(), "class_prior_", len(classes), len(prior)); err != nil {
		return nil, err
	}
	return prior, nil
}

// PriorProbability returns the prior of class index. Only the prior
// strategy defines one.
func (c *Classifier) PriorProbability(index int) (float64, error) {
	strategy, err := c.strategy()
	if err != nil {
		return 0, err
	}
	if strategy != strategyPrior {
		return 0, errors.NewUnsupportedVariantError(c.TypeKey(), "strategy "+strategy+" as initial estimator")
	}
	prior, err := c.classPrior()
	if err != nil {
		return 0, err
	}
	return prior[index], nil
}

func (c *Classifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	strategy, err := c.strategy()
	if err != nil {
		return nil, err
	}
	prior, err := c.classPrior()
	if err != nil {
		return nil, err
	}

	var probabilities []float64
	switch strategy {
	case strategyPrior:
		probabilities = prior
	case strategyMostFrequent:
		probabilities = oneHot(len(prior), floats.MaxIdx(prior))
	case strategyConstant:
		classes, err := c.Classes()
		if err != nil {
			return nil, err
		}
		constant := c.Object().GetOptional("constant")
		index := -1
		for i, class := range classes {
			if schema.FormatValue(class) == schema.FormatValue(constant) {
				index = i
			}
		}
		if index < 0 {
			return nil, errors.NewInvalidAttributeValueError(c.TypeKey(), "constant", constant)
		}
		probabilities = oneHot(len(prior), index)
	default:
		return nil, errors.NewUnsupportedVariantError(c.TypeKey(), "strategy "+strategy)
	}

	enc := s.Encoder()
	root := &pmml.Node{
		ID:        "0",
		Score:     label.Value(floats.MaxIdx(probabilities)),
		Predicate: enc.InternPredicate(&pmml.True{}),
	}
	for i, p := range probabilities {
		root.ScoreDistributions = append(root.ScoreDistributions, enc.InternScoreDistribution(label.Value(i), p, pmml.Float(p)))
	}
	m := &pmml.TreeModel{ModelBase: modelgraph.NewModelBase(pmml.MiningFunctionClassification, label), Node: root}
	modelgraph.AddOutputFields(m, modelgraph.ProbabilityFields(label)...)
	return m, nil
}

func oneHot(n, index int) []float64 {
	out := make([]float64, n)
	out[index] = 1
	return out
}

// Regressor encodes DummyRegressor.
type Regressor struct {
	model.RegressorBase
}

func NewRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Regressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

// DefaultValue returns the fitted constant of a single-output regressor.
func (r *Regressor) DefaultValue() (float64, error) {
	constant, err := r.Object().GetNumberArray("constant_")
	if err != nil {
		return 0, err
	}
	if err := errors.CheckSize(r.TypeKey(), "constant_", 1, len(constant)); err != nil {
		return 0, err
	}
	return constant[0], nil
}

func (r *Regressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	if _, err := r.Object().GetEnum("strategy", strategyMean, strategyMedian, strategyQuantile, strategyConstant); err != nil {
		return nil, err
	}
	value, err := r.DefaultValue()
	if err != nil {
		return nil, err
	}
	root := &pmml.Node{ID: "0", Score: pmml.FormatNumber(value), Predicate: s.Encoder().InternPredicate(&pmml.True{})}
	return &pmml.TreeModel{ModelBase: modelgraph.NewModelBase(pmml.MiningFunctionRegression, s.Label()), Node: root}, nil
}

// Register adds the dummy estimators to r.
func Register(r *model.Registry) {
	r.Register("sklearn.dummy", "DummyClassifier", NewClassifier)
	r.Register("sklearn.dummy", "DummyRegressor", NewRegressor)
}
