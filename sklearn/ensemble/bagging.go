package ensemble

import (
	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// BaggingClassifier averages member probabilities, or takes a majority
// vote when some member cannot estimate them.
type BaggingClassifier struct {
	model.ClassifierBase
}

func NewBaggingClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &BaggingClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *BaggingClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	members, models, err := encodeBagging(&c.Base, s)
	if err != nil {
		return nil, err
	}

	method := pmml.MethodAverage
	for _, e := range members {
		if mc, ok := e.(model.Classifier); !ok || !mc.HasProbabilityDistribution() {
			method = pmml.MethodMajorityVote
			break
		}
	}
	mm, err := ens.Compose(pmml.MiningFunctionClassification, label, method, models, nil)
	if err != nil {
		return nil, err
	}
	if method == pmml.MethodAverage {
		modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
	}
	return mm, nil
}

// HasProbabilityDistribution is false when the members are combined by
// vote.
func (c *BaggingClassifier) HasProbabilityDistribution() bool {
	members, err := estimators(&c.Base, "estimators_")
	if err != nil {
		return false
	}
	for _, e := range members {
		if mc, ok := e.(model.Classifier); !ok || !mc.HasProbabilityDistribution() {
			return false
		}
	}
	return true
}

// BaggingRegressor averages member predictions.
type BaggingRegressor struct {
	model.RegressorBase
}

func NewBaggingRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &BaggingRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *BaggingRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	_, models, err := encodeBagging(&r.Base, s)
	if err != nil {
		return nil, err
	}
	return ens.Compose(pmml.MiningFunctionRegression, s.Label(), pmml.MethodAverage, models, nil)
}

// encodeBagging encodes member i against the feature subset it was fitted
// on.
func encodeBagging(b *model.Base, s *schema.Schema) ([]model.Estimator, []pmml.Model, error) {
	members, err := estimators(b, "estimators_")
	if err != nil {
		return nil, nil, err
	}
	subsets, err := featureSubsets(b, len(members), s.NumberOfFeatures())
	if err != nil {
		return nil, nil, err
	}
	anonymous := s.ToAnonymous()
	models := make([]pmml.Model, len(members))
	for i, e := range members {
		m, err := model.Encode(e, anonymous.SubSchema(subsets[i]))
		if err != nil {
			return nil, nil, err
		}
		models[i] = m
	}
	return members, models, nil
}
