package tree

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// DecisionTreeClassifier encodes DecisionTreeClassifier and
// ExtraTreeClassifier.
type DecisionTreeClassifier struct {
	model.ClassifierBase
}

func NewDecisionTreeClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &DecisionTreeClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *DecisionTreeClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	return c.EncodeTree(s)
}

func (c *DecisionTreeClassifier) EncodeTree(s *schema.Schema) (*pmml.TreeModel, error) {
	return encodeTree(&c.Base, pmml.MiningFunctionClassification, s)
}

func (c *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	return c.Object().GetOptionalNumberArray("feature_importances_")
}

func (c *DecisionTreeClassifier) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return ConfigureSchema(c, s)
}

func (c *DecisionTreeClassifier) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return ConfigureModel(c, m, s), nil
}

// DecisionTreeRegressor encodes DecisionTreeRegressor and
// ExtraTreeRegressor.
type DecisionTreeRegressor struct {
	model.RegressorBase
}

func NewDecisionTreeRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &DecisionTreeRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *DecisionTreeRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	return r.EncodeTree(s)
}

func (r *DecisionTreeRegressor) EncodeTree(s *schema.Schema) (*pmml.TreeModel, error) {
	return encodeTree(&r.Base, pmml.MiningFunctionRegression, s)
}

func (r *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	return r.Object().GetOptionalNumberArray("feature_importances_")
}

func (r *DecisionTreeRegressor) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return ConfigureSchema(r, s)
}

func (r *DecisionTreeRegressor) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return ConfigureModel(r, m, s), nil
}

// DecodeTree reads the tree_ attribute of a fitted tree estimator.
func DecodeTree(b *model.Base) (*Tree, error) {
	obj, err := b.Object().GetObject("tree_")
	if err != nil {
		return nil, err
	}
	t, err := Decode(obj)
	if err != nil {
		return nil, err
	}
	if t.Outputs != 1 {
		return nil, errors.NewUnsupportedVariantError(b.TypeKey(), "multi-output tree")
	}
	return t, nil
}

// DefaultOptions enables default children for releases that learn
// missing-value routing.
func DefaultOptions(b *model.Base) Options {
	return Options{MissingGoToLeft: b.Version().AtLeast(version.TreeMissingGoToLeft)}
}

func encodeTree(b *model.Base, fn pmml.MiningFunction, s *schema.Schema) (*pmml.TreeModel, error) {
	t, err := DecodeTree(b)
	if err != nil {
		return nil, err
	}
	return Encode(t, fn, s, DefaultOptions(b))
}

// ConfigureModel drops default children unless missing values are allowed.
// Tree ensembles call it on their composed model.
func ConfigureModel(h optionHolder, m pmml.Model, s *schema.Schema) pmml.Model {
	if AllowMissing(h, s.Encoder()) {
		return m
	}
	return StripDefaultChildren(m)
}

// Register adds the single-tree estimators to r.
func Register(r *model.Registry) {
	r.Register("sklearn.tree", "DecisionTreeClassifier", NewDecisionTreeClassifier)
	r.Register("sklearn.tree", "ExtraTreeClassifier", NewDecisionTreeClassifier)
	r.Register("sklearn.tree", "DecisionTreeRegressor", NewDecisionTreeRegressor)
	r.Register("sklearn.tree", "ExtraTreeRegressor", NewDecisionTreeRegressor)
}
