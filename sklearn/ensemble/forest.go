package ensemble

import (
	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/tree"
)

// ForestClassifier encodes RandomForestClassifier and ExtraTreesClassifier.
type ForestClassifier struct {
	model.ClassifierBase
}

func NewForestClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &ForestClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *ForestClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	mm, err := encodeForest(&c.Base, pmml.MiningFunctionClassification, s)
	if err != nil {
		return nil, err
	}
	modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
	return mm, nil
}

func (c *ForestClassifier) FeatureImportances() ([]float64, error) {
	return c.Object().GetOptionalNumberArray("feature_importances_")
}

func (c *ForestClassifier) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return tree.ConfigureSchema(c, s)
}

func (c *ForestClassifier) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return tree.ConfigureModel(c, m, s), nil
}

// ForestRegressor encodes RandomForestRegressor and ExtraTreesRegressor.
type ForestRegressor struct {
	model.RegressorBase
}

func NewForestRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &ForestRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *ForestRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	return encodeForest(&r.Base, pmml.MiningFunctionRegression, s)
}

func (r *ForestRegressor) FeatureImportances() ([]float64, error) {
	return r.Object().GetOptionalNumberArray("feature_importances_")
}

func (r *ForestRegressor) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return tree.ConfigureSchema(r, s)
}

func (r *ForestRegressor) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return tree.ConfigureModel(r, m, s), nil
}

// encodeForest averages the member trees. Every member sees all features
// of the forest.
func encodeForest(b *model.Base, fn pmml.MiningFunction, s *schema.Schema) (*pmml.MiningModel, error) {
	members, err := trees(b, "estimators_")
	if err != nil {
		return nil, err
	}
	models, err := encodeTrees(b, members, fn, s.ToAnonymous(), nil, tree.DefaultOptions(b))
	if err != nil {
		return nil, err
	}
	return ens.Compose(fn, s.Label(), pmml.MethodAverage, models, nil)
}
