package linear_model

import (
	"github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// LinearRegressor encodes linear regressors. A rank-2 coef_ has one row
// per output; the outputs are chained into one multi-target model.
type LinearRegressor struct {
	model.RegressorBase
}

func NewLinearRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &LinearRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (lr *LinearRegressor) NumberOfFeatures() int {
	rows, cols, _, err := lr.Object().GetMatrix("coef_")
	if err != nil || rows < 1 {
		return lr.Base.NumberOfFeatures()
	}
	return cols
}

// NumberOfOutputs is the row count of a rank-2 coef_, else 1.
func (lr *LinearRegressor) NumberOfOutputs() int {
	shape, err := lr.Object().GetArrayShape("coef_", 2)
	if err != nil {
		return 1
	}
	return shape[0]
}

func (lr *LinearRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	obj := lr.Object()
	rows, cols, coef, err := obj.GetMatrix("coef_")
	if err != nil {
		return nil, err
	}
	intercept, err := obj.GetNumberArray("intercept_")
	if err != nil {
		return nil, err
	}

	outputs := lr.NumberOfOutputs()
	if outputs == 1 {
		if err := errors.CheckSize(obj.TypeKey(), "intercept_", 1, len(intercept)); err != nil {
			return nil, err
		}
		return modelgraph.NewRegression(s, coef, intercept[0], pmml.NormalizationNone)
	}

	multiLabel, ok := s.Label().(*schema.MultiLabel)
	if !ok {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), "single-target schema", "multi-target schema")
	}
	if err := errors.CheckSize(obj.TypeKey(), "targets", rows, len(multiLabel.Labels())); err != nil {
		return nil, err
	}
	if len(intercept) == 1 {
		intercept = repeat(intercept[0], rows)
	}
	if err := errors.CheckSize(obj.TypeKey(), "intercept_", rows, len(intercept)); err != nil {
		return nil, err
	}

	models := make([]pmml.Model, rows)
	for i, label := range multiLabel.Labels() {
		m, err := modelgraph.NewRegression(s.Relabel(label), coef[i*cols:(i+1)*cols], intercept[i], pmml.NormalizationNone)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return ensemble.Chain(pmml.MiningFunctionRegression, multiLabel, models, pmml.MissingPredictionContinue)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
