package linear_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// LinearClassifier encodes a classifier whose decision function is
// coef_ · x + intercept_, with one coef_ row per class (a single row for
// binary problems).
type LinearClassifier struct {
	model.ClassifierBase

	// probabilistic reports whether predict_proba is the logistic
	// function of the decision function.
	probabilistic func(obj *store.Object) bool
}

// NewLinearClassifier returns a constructor for classifiers without
// probability estimates, such as RidgeClassifier or LinearSVC.
func NewLinearClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return newLinearClassifier(obj, r, nil), nil
}

// NewProbabilisticClassifier returns a constructor for classifiers whose
// predict_proba is the logistic function of the decision function.
func NewProbabilisticClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return newLinearClassifier(obj, r, always), nil
}

func always(*store.Object) bool { return true }

// NewSGDClassifier exposes probabilities for the logistic losses only.
func NewSGDClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return newLinearClassifier(obj, r, func(obj *store.Object) bool {
		loss, _ := obj.GetOptionalString("loss")
		return loss == "log" || loss == "log_loss"
	}), nil
}

func newLinearClassifier(obj *store.Object, r *model.Registry, probabilistic func(*store.Object) bool) *LinearClassifier {
	return &LinearClassifier{ClassifierBase: model.NewClassifierBase(obj, r), probabilistic: probabilistic}
}

func (c *LinearClassifier) HasProbabilityDistribution() bool {
	if c.probabilistic == nil {
		return false
	}
	return c.probabilistic(c.Object())
}

// NumberOfFeatures reads the column count of coef_.
func (c *LinearClassifier) NumberOfFeatures() int {
	_, cols, _, err := c.Object().GetMatrix("coef_")
	if err != nil {
		return c.Base.NumberOfFeatures()
	}
	return cols
}

// coefficients returns coef_ as a classes x features matrix together with
// one intercept per row. A scalar intercept_ (fit_intercept=False) is
// broadcast.
func (c *LinearClassifier) coefficients() (*mat.Dense, []float64, error) {
	obj := c.Object()
	rows, cols, data, err := obj.GetMatrix("coef_")
	if err != nil {
		return nil, nil, err
	}
	coef := mat.NewDense(rows, cols, data)
	if err := errors.CheckMatrix(obj.TypeKey(), "coef_", coef); err != nil {
		return nil, nil, err
	}

	intercept, err := obj.GetNumberArray("intercept_")
	if err != nil {
		return nil, nil, err
	}
	if len(intercept) == 1 && rows > 1 {
		intercept = repeat(intercept[0], rows)
	}
	if err := errors.CheckSize(obj.TypeKey(), "intercept_", rows, len(intercept)); err != nil {
		return nil, nil, err
	}
	return coef, intercept, nil
}

func (c *LinearClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	return c.EncodeOneVsRest(s)
}

// EncodeOneVsRest encodes one-vs-rest: a single logistic model for two classes,
// otherwise one logistic regression per class normalised by SIMPLEMAX.
func (c *LinearClassifier) EncodeOneVsRest(s *schema.Schema) (pmml.Model, error) {
	coef, intercept, err := c.coefficients()
	if err != nil {
		return nil, err
	}
	rows, _ := coef.Dims()

	switch {
	case rows == 1:
		return modelgraph.NewBinaryLogisticClassification(s, coef.RawRowView(0), intercept[0], pmml.NormalizationLogit, c.HasProbabilityDistribution())
	case rows >= 3:
		return c.encodePerClass(s, coef, intercept, pmml.NormalizationLogit, pmml.NormalizationSimpleMax)
	}
	return nil, errors.NewUnsupportedVariantError(c.TypeKey(), "coef_ with 2 rows")
}

// EncodePerClass encodes one decision-function regression per class,
// normalised by memberNorm, and combines them with norm.
func (c *LinearClassifier) EncodePerClass(s *schema.Schema, memberNorm, norm pmml.NormalizationMethod) (pmml.Model, error) {
	coef, intercept, err := c.coefficients()
	if err != nil {
		return nil, err
	}
	return c.encodePerClass(s, coef, intercept, memberNorm, norm)
}

func (c *LinearClassifier) encodePerClass(s *schema.Schema, coef *mat.Dense, intercept []float64, memberNorm, norm pmml.NormalizationMethod) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	rows, _ := coef.Dims()
	if err := errors.CheckSize(c.TypeKey(), "classes", rows, label.Size()); err != nil {
		return nil, err
	}
	segmentSchema := s.ToAnonymousRegressor(pmml.DataTypeDouble)

	models := make([]pmml.Model, label.Size())
	fields := make([]string, label.Size())
	for i, value := range label.Values() {
		m, err := modelgraph.NewRegression(segmentSchema, coef.RawRowView(i), intercept[i], memberNorm)
		if err != nil {
			return nil, err
		}
		fields[i] = modelgraph.FieldName(modelgraph.FieldDecisionFunction, value)
		modelgraph.AddOutputFields(m, modelgraph.PredictedField(fields[i], pmml.OpTypeContinuous, pmml.DataTypeDouble))
		models[i] = m
	}
	return ensemble.Classification(models, fields, norm, c.HasProbabilityDistribution(), s)
}

// encodeMultinomial encodes a softmax over all classes. A single coef_ row
// is the binary case: the decision function d is turned into scores -d and
// +d for the two classes.
func (c *LinearClassifier) encodeMultinomial(s *schema.Schema) (pmml.Model, error) {
	coef, intercept, err := c.coefficients()
	if err != nil {
		return nil, err
	}
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	rows, _ := coef.Dims()

	switch {
	case rows == 1:
		if err := errors.CheckSize(c.TypeKey(), "classes", 2, label.Size()); err != nil {
			return nil, err
		}
		first, err := modelgraph.NewRegression(s.Relabel(nil), coef.RawRowView(0), intercept[0], pmml.NormalizationNone)
		if err != nil {
			return nil, err
		}
		modelgraph.AddOutputFields(first, modelgraph.PredictedField(modelgraph.FieldDecisionFunction, pmml.OpTypeContinuous, pmml.DataTypeDouble))

		decision := schema.NewContinuousFeature(modelgraph.FieldDecisionFunction, pmml.DataTypeDouble)
		second, err := modelgraph.NewMultinomialClassification(s.WithFeatures([]schema.Feature{decision}), [][]float64{{-1}, {1}}, []float64{0, 0}, pmml.NormalizationSoftmax, false)
		if err != nil {
			return nil, err
		}
		mm, err := ensemble.Chain(pmml.MiningFunctionClassification, label, []pmml.Model{first, second}, pmml.MissingPredictionReturnMissing)
		if err != nil {
			return nil, err
		}
		modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
		return mm, nil
	case rows >= 3:
		rowViews := make([][]float64, rows)
		for i := range rowViews {
			rowViews[i] = coef.RawRowView(i)
		}
		return modelgraph.NewMultinomialClassification(s, rowViews, intercept, pmml.NormalizationSoftmax, true)
	}
	return nil, errors.NewUnsupportedVariantError(c.TypeKey(), "coef_ with 2 rows")
}
