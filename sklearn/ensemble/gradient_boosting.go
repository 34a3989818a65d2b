package ensemble

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

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

// Loss names of GradientBoostingClassifier.
const (
	lossDeviance    = "deviance"
	lossLogLoss     = "log_loss"
	lossExponential = "exponential"
)

// float32 machine epsilon, the clipping bound of prior probabilities.
const priorEpsilon = 1.1920928955078125e-07

// GradientBoostingClassifier encodes one boosted tree sum per class column:
// a single column for two classes, K columns otherwise.
type GradientBoostingClassifier struct {
	model.ClassifierBase
}

func NewGradientBoostingClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &GradientBoostingClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *GradientBoostingClassifier) loss() (string, error) {
	return c.Object().GetEnum("loss", lossDeviance, lossLogLoss, lossExponential)
}

func (c *GradientBoostingClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	loss, err := c.loss()
	if err != nil {
		return nil, err
	}
	columns := label.Size()
	if columns == 2 {
		columns = 1
	}
	initial, err := c.initialPredictions(label.Size(), loss)
	if err != nil {
		return nil, err
	}
	models, err := encodeBoosting(&c.Base, columns, initial, s.ToAnonymousRegressor(pmml.DataTypeDouble))
	if err != nil {
		return nil, err
	}

	if columns == 1 {
		field := modelgraph.FieldName(modelgraph.FieldDecisionFunction, label.Value(1))
		modelgraph.AddOutputFields(models[0], modelgraph.PredictedField(field, pmml.OpTypeContinuous, pmml.DataTypeDouble))
		coefficient := 1.0
		if loss == lossExponential {
			coefficient = 2
		}
		return ens.BinaryClassification(models[0], field, coefficient, pmml.NormalizationLogit, true, s)
	}

	fields := make([]string, columns)
	for k := range fields {
		fields[k] = modelgraph.FieldName(modelgraph.FieldDecisionFunction, label.Value(k))
		modelgraph.AddOutputFields(models[k], modelgraph.PredictedField(fields[k], pmml.OpTypeContinuous, pmml.DataTypeDouble))
	}
	return ens.Classification(models, fields, pmml.NormalizationSoftmax, true, s)
}

// initialPredictions returns the raw score each class column starts from.
// Releases before 0.21 store it in the init estimator; later ones derive
// it from the class priors through the loss, and from 1.4.0 on through the
// link function, which centres multiclass scores on their mean.
func (c *GradientBoostingClassifier) initialPredictions(classes int, loss string) ([]float64, error) {
	init, err := initEstimator(&c.Base)
	if err != nil {
		return nil, err
	}
	binary := classes == 2
	if init == nil {
		if binary {
			return []float64{0}, nil
		}
		return make([]float64, classes), nil
	}
	h, ok := init.(model.HasPriorProbability)
	if !ok {
		return nil, errors.NewCapabilityCastError(init.Object().TypeKey(), "Step", "HasPriorProbability")
	}
	priors := make([]float64, classes)
	for i := range priors {
		if priors[i], err = h.PriorProbability(i); err != nil {
			return nil, err
		}
	}

	v := c.Version()
	if !v.AtLeast(version.GradientBoostingComputed) {
		if binary {
			return priors[1:], nil
		}
		return priors, nil
	}

	for i, p := range priors {
		priors[i] = math.Min(math.Max(p, priorEpsilon), 1-priorEpsilon)
	}
	if binary {
		raw := math.Log(priors[1] / (1 - priors[1]))
		if loss == lossExponential {
			raw /= 2
		}
		return []float64{raw}, nil
	}
	raw := make([]float64, classes)
	for i, p := range priors {
		raw[i] = math.Log(p)
	}
	if v.AtLeast(version.GradientBoostingLink) {
		floats.AddConst(-stat.Mean(raw, nil), raw)
	}
	return raw, nil
}

func (c *GradientBoostingClassifier) FeatureImportances() ([]float64, error) {
	return c.Object().GetOptionalNumberArray("feature_importances_")
}

func (c *GradientBoostingClassifier) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return tree.ConfigureSchema(c, s)
}

func (c *GradientBoostingClassifier) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return tree.ConfigureModel(c, m, s), nil
}

// GradientBoostingRegressor encodes the boosted tree sum of a regressor.
type GradientBoostingRegressor struct {
	model.RegressorBase
}

func NewGradientBoostingRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &GradientBoostingRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *GradientBoostingRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	initial := 0.0
	init, err := initEstimator(&r.Base)
	if err != nil {
		return nil, err
	}
	if init != nil {
		h, ok := init.(model.HasDefaultValue)
		if !ok {
			return nil, errors.NewCapabilityCastError(init.Object().TypeKey(), "Step", "HasDefaultValue")
		}
		if initial, err = h.DefaultValue(); err != nil {
			return nil, err
		}
	}
	models, err := encodeBoosting(&r.Base, 1, []float64{initial}, s)
	if err != nil {
		return nil, err
	}
	return models[0], nil
}

func (r *GradientBoostingRegressor) FeatureImportances() ([]float64, error) {
	return r.Object().GetOptionalNumberArray("feature_importances_")
}

func (r *GradientBoostingRegressor) ConfigureSchema(s *schema.Schema) (*schema.Schema, error) {
	return tree.ConfigureSchema(r, s)
}

func (r *GradientBoostingRegressor) ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error) {
	return tree.ConfigureModel(r, m, s), nil
}

// initEstimator constructs init_. It returns nil when boosting starts from
// zero.
func initEstimator(b *model.Base) (model.Step, error) {
	switch v := b.Object().GetOptional("init_").(type) {
	case nil:
		return nil, nil
	case string:
		if v != "zero" {
			return nil, errors.NewInvalidAttributeValueError(b.TypeKey(), "init_", v, "zero")
		}
		return nil, nil
	case *store.Object:
		return b.Registry().Construct(v)
	default:
		_, err := b.Object().GetObject("init_")
		return nil, err
	}
}

// encodeBoosting builds one MiningModel per class column. Column k sums
// estimators_[:, k], scaled by the learning rate and shifted by initial[k].
func encodeBoosting(b *model.Base, columns int, initial []float64, s *schema.Schema) ([]pmml.Model, error) {
	learningRate, err := b.Object().GetNumber("learning_rate")
	if err != nil {
		return nil, err
	}
	shape, err := b.Object().GetArrayShape("estimators_", 2)
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "estimators_ columns", columns, shape[1]); err != nil {
		return nil, err
	}
	objs, err := b.Object().GetObjectList("estimators_")
	if err != nil {
		return nil, err
	}
	members, err := decodeTrees(b, objs)
	if err != nil {
		return nil, err
	}

	opts := tree.DefaultOptions(b)
	label := s.Label()
	segmentSchema := s.ToAnonymous()
	models := make([]pmml.Model, columns)
	for k := 0; k < columns; k++ {
		column := make([]*tree.Tree, 0, shape[0])
		for i := 0; i < shape[0]; i++ {
			column = append(column, members[i*columns+k])
		}
		treeModels, err := encodeTrees(b, column, pmml.MiningFunctionRegression, segmentSchema, nil, opts)
		if err != nil {
			return nil, err
		}
		mm, err := ens.Sum(label, treeModels)
		if err != nil {
			return nil, err
		}
		mm.Targets = &pmml.Targets{Targets: []*pmml.Target{{
			Field:           label.Name(),
			RescaleFactor:   pmml.Float(learningRate),
			RescaleConstant: pmml.Float(initial[k]),
		}}}
		models[k] = mm
	}
	return models, nil
}
