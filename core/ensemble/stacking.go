package ensemble

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// EncodeMembers encodes every estimator against s.
func EncodeMembers[T model.Estimator](estimators []T, s *schema.Schema) ([]pmml.Model, error) {
	models := make([]pmml.Model, len(estimators))
	for i, e := range estimators {
		m, err := model.Encode(e, s)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	s.Encoder().Logger().Debug("Encoded ensemble members", log.SegmentsKey, len(models))
	return models, nil
}

// ExportFunction exposes the predictions of member index, encoded as m, as
// features for the final estimator. It may add output fields to m.
type ExportFunction func(index int, m pmml.Model, method string) ([]schema.Feature, error)

// Stack encodes a stacking ensemble: members are encoded against the
// anonymous schema, their exported predictions (followed by the original
// features when passthrough is set) feed the final estimator, and the whole
// is evaluated as a model chain.
func Stack[T model.Estimator](members []T, methods []string, export ExportFunction, final model.Estimator, passthrough bool, s *schema.Schema) (*pmml.MiningModel, error) {
	if err := errors.CheckSize("Stack", "stack_method_", len(members), len(methods)); err != nil {
		return nil, err
	}
	models, err := EncodeMembers(members, s.ToAnonymous())
	if err != nil {
		return nil, err
	}

	var stackFeatures []schema.Feature
	for i, m := range models {
		features, err := export(i, m, methods[i])
		if err != nil {
			return nil, err
		}
		stackFeatures = append(stackFeatures, features...)
	}
	if passthrough {
		stackFeatures = append(stackFeatures, s.Features()...)
	}

	finalModel, err := model.Encode(final, s.WithFeatures(stackFeatures))
	if err != nil {
		return nil, err
	}
	models = append(models, finalModel)
	return Chain(final.MiningFunction(), s.Label(), models, pmml.MissingPredictionReturnMissing)
}

// ExportProbability adds an output field carrying the probability of value
// to m and returns it as a continuous feature.
func ExportProbability(m pmml.Model, name, value string) schema.Feature {
	modelgraph.AddOutputFields(m, &pmml.OutputField{
		Name:     name,
		OpType:   pmml.OpTypeContinuous,
		DataType: pmml.DataTypeDouble,
		Feature:  pmml.ResultProbability,
		Value:    value,
	})
	return schema.NewContinuousFeature(name, pmml.DataTypeDouble)
}

// ExportPrediction adds an output field carrying the predicted value of m
// and returns it as a continuous feature.
func ExportPrediction(m pmml.Model, name string) schema.Feature {
	modelgraph.AddOutputFields(m, modelgraph.PredictedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble))
	return schema.NewContinuousFeature(name, pmml.DataTypeDouble)
}
