package ensemble

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// legacyModule holds the init estimators of releases before 0.21.
const legacyModule = "sklearn.ensemble.gradient_boosting"

// LogOddsEstimator carries the log-odds of the positive class as prior_.
// The value is used as is for every class index.
type LogOddsEstimator struct {
	obj *store.Object
}

func NewLogOddsEstimator(obj *store.Object, _ *model.Registry) (model.Step, error) {
	return &LogOddsEstimator{obj: obj}, nil
}

func (e *LogOddsEstimator) Object() *store.Object { return e.obj }

func (e *LogOddsEstimator) PriorProbability(int) (float64, error) {
	return e.obj.GetNumber("prior")
}

// PriorProbabilityEstimator carries one prior per class.
type PriorProbabilityEstimator struct {
	obj *store.Object
}

func NewPriorProbabilityEstimator(obj *store.Object, _ *model.Registry) (model.Step, error) {
	return &PriorProbabilityEstimator{obj: obj}, nil
}

func (e *PriorProbabilityEstimator) Object() *store.Object { return e.obj }

func (e *PriorProbabilityEstimator) PriorProbability(index int) (float64, error) {
	priors, err := e.obj.GetNumberArray("priors")
	if err != nil {
		return 0, err
	}
	if index >= len(priors) {
		return 0, errors.NewSchemaSizeError(e.obj.TypeKey(), "priors", index+1, len(priors))
	}
	return priors[index], nil
}

// constantEstimator is a regression init estimator storing its prediction
// under a single attribute.
type constantEstimator struct {
	obj       *store.Object
	attribute string
}

func (e *constantEstimator) Object() *store.Object { return e.obj }

func (e *constantEstimator) DefaultValue() (float64, error) {
	return e.obj.GetNumber(e.attribute)
}

func constant(attribute string) model.Constructor {
	return func(obj *store.Object, _ *model.Registry) (model.Step, error) {
		return &constantEstimator{obj: obj, attribute: attribute}, nil
	}
}

// ZeroEstimator starts both classifiers and regressors from zero.
type ZeroEstimator struct {
	obj *store.Object
}

func NewZeroEstimator(obj *store.Object, _ *model.Registry) (model.Step, error) {
	return &ZeroEstimator{obj: obj}, nil
}

func (e *ZeroEstimator) Object() *store.Object                 { return e.obj }
func (e *ZeroEstimator) PriorProbability(int) (float64, error) { return 0, nil }
func (e *ZeroEstimator) DefaultValue() (float64, error)        { return 0, nil }

func registerInitEstimators(r *model.Registry) {
	r.Register(legacyModule, "LogOddsEstimator", NewLogOddsEstimator)
	r.Register(legacyModule, "ScaledLogOddsEstimator", NewLogOddsEstimator)
	r.Register(legacyModule, "PriorProbabilityEstimator", NewPriorProbabilityEstimator)
	r.Register(legacyModule, "MeanEstimator", constant("mean"))
	r.Register(legacyModule, "QuantileEstimator", constant("quantile"))
	r.Register(legacyModule, "ZeroEstimator", NewZeroEstimator)
}
