// Package ensemble combines member model graphs into one MiningModel.
package ensemble

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Method selects the weighted variant of method when weights are given and
// not all equal to one.
func Method(method pmml.MultipleModelMethod, weights []float64) pmml.MultipleModelMethod {
	if !isWeighted(weights) {
		return method
	}
	switch method {
	case pmml.MethodAverage:
		return pmml.MethodWeightedAverage
	case pmml.MethodMajorityVote:
		return pmml.MethodWeightedMajorityVote
	}
	return method
}

func isWeighted(weights []float64) bool {
	for _, w := range weights {
		if w != 1 {
			return true
		}
	}
	return false
}

// Compose wraps members into a MiningModel predicting label. Weights are
// attached to the segments only for the weighted methods.
func Compose(fn pmml.MiningFunction, label schema.Label, method pmml.MultipleModelMethod, members []pmml.Model, weights []float64) (*pmml.MiningModel, error) {
	if len(members) == 0 {
		return nil, errors.NewValueError("Compose", "no members")
	}
	if weights != nil {
		if err := errors.CheckSize("Compose", "weights", len(members), len(weights)); err != nil {
			return nil, err
		}
	}
	method = Method(method, weights)
	weighted := method == pmml.MethodWeightedAverage || method == pmml.MethodWeightedMajorityVote

	segments := make([]*pmml.Segment, len(members))
	for i, m := range members {
		segments[i] = &pmml.Segment{ID: strconv.Itoa(i + 1), Predicate: &pmml.True{}, Model: m}
		if weighted {
			segments[i].Weight = pmml.Float(weights[i])
		}
	}
	return &pmml.MiningModel{
		ModelBase: modelgraph.NewModelBase(fn, label),
		Segmentation: &pmml.Segmentation{
			MultipleModelMethod:        method,
			MissingPredictionTreatment: pmml.MissingPredictionReturnMissing,
			Segments:                   segments,
		},
	}, nil
}

// Chain evaluates members in order; later members read the output fields of
// earlier ones and the last member gives the result.
func Chain(fn pmml.MiningFunction, label schema.Label, members []pmml.Model, treatment pmml.MissingPredictionTreatment) (*pmml.MiningModel, error) {
	mm, err := Compose(fn, label, pmml.MethodModelChain, members, nil)
	if err != nil {
		return nil, err
	}
	mm.Segmentation.MissingPredictionTreatment = treatment
	return mm, nil
}

// Sum adds the predictions of regression members.
func Sum(label schema.Label, members []pmml.Model) (*pmml.MiningModel, error) {
	return Compose(pmml.MiningFunctionRegression, label, pmml.MethodSum, members, nil)
}
