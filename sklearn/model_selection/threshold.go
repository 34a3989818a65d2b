// Package model_selection encodes the threshold classifiers, which relabel
// a binary classifier's positive-class probability against a cut-off.
package model_selection

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	responseAuto         = "auto"
	responsePredictProba = "predict_proba"
	responseDecision     = "decision_function"

	thresholdAuto = "auto"
)

// ThresholdClassifier is shared by FixedThresholdClassifier and
// TunedThresholdClassifierCV; they differ in where the cut-off is stored.
type ThresholdClassifier struct {
	model.ClassifierBase
	thresholdAttr string
}

func NewFixedThresholdClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &ThresholdClassifier{ClassifierBase: model.NewClassifierBase(obj, r), thresholdAttr: "threshold"}, nil
}

func NewTunedThresholdClassifierCV(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &ThresholdClassifier{ClassifierBase: model.NewClassifierBase(obj, r), thresholdAttr: "best_threshold_"}, nil
}

func (tc *ThresholdClassifier) estimator() (model.Classifier, error) {
	obj, err := tc.Object().GetObject("estimator_")
	if err != nil {
		return nil, err
	}
	return tc.Registry().AsClassifier(obj)
}

func (tc *ThresholdClassifier) Classes() ([]any, error) {
	e, err := tc.estimator()
	if err != nil {
		return nil, err
	}
	return e.Classes()
}

func (tc *ThresholdClassifier) HasProbabilityDistribution() bool {
	e, err := tc.estimator()
	return err == nil && e.HasProbabilityDistribution()
}

func (tc *ThresholdClassifier) NumberOfFeatures() int {
	e, err := tc.estimator()
	if err != nil {
		return tc.Base.NumberOfFeatures()
	}
	return e.NumberOfFeatures()
}

func (tc *ThresholdClassifier) threshold() (float64, error) {
	obj := tc.Object()
	if v, ok := obj.GetOptional(tc.thresholdAttr).(string); ok && v == thresholdAuto {
		return 0, errors.NewInvalidAttributeValueError(tc.TypeKey(), tc.thresholdAttr, v, "a number")
	}
	return obj.GetNumber(tc.thresholdAttr)
}

// EncodeModel encodes the wrapped classifier and adds thresholded(y), which
// is the negative class when probability(positive) is below the cut-off.
func (tc *ThresholdClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(tc.TypeKey(), "classes", 2, label.Size()); err != nil {
		return nil, err
	}
	method := responseAuto
	if tc.Object().Has("response_method") {
		if method, err = tc.Object().GetEnum("response_method", responseAuto, responsePredictProba, responseDecision); err != nil {
			return nil, err
		}
	}
	if method == responseDecision {
		return nil, errors.NewUnsupportedVariantError(tc.TypeKey(), "response_method="+method)
	}
	threshold, err := tc.threshold()
	if err != nil {
		return nil, err
	}
	e, err := tc.estimator()
	if err != nil {
		return nil, err
	}

	m, err := model.Encode(e, s)
	if err != nil {
		return nil, err
	}
	probability := modelgraph.FieldName(modelgraph.FieldProbability, label.Value(1))
	if modelgraph.OutputField(m, probability) == nil {
		return nil, errors.NewCapabilityCastError(e.Object().TypeKey(), "classifier without probabilities", "probabilistic classifier")
	}

	expr := pmml.NewApply("if",
		pmml.NewApply("lessThan", pmml.NewFieldRef(probability), pmml.NewConstant(threshold)),
		&pmml.Constant{DataType: label.DataType(), Value: label.Value(0)},
		&pmml.Constant{DataType: label.DataType(), Value: label.Value(1)},
	)
	name := modelgraph.FieldName("thresholded", label.Name())
	modelgraph.AddOutputFields(m, modelgraph.TransformedField(name, pmml.OpTypeCategorical, label.DataType(), expr))
	return m, nil
}

func Register(r *model.Registry) {
	r.Register("sklearn.model_selection", "FixedThresholdClassifier", NewFixedThresholdClassifier)
	r.Register("sklearn.model_selection", "TunedThresholdClassifierCV", NewTunedThresholdClassifierCV)
}
