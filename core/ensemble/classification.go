package ensemble

import (
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// BinaryClassification chains m, whose predicted value is exposed as field,
// with a two-class logistic model scoring the second class by
// coefficient*field.
func BinaryClassification(m pmml.Model, field string, coefficient float64, norm pmml.NormalizationMethod, hasProbability bool, s *schema.Schema) (*pmml.MiningModel, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize("BinaryClassification", "classes", 2, label.Size()); err != nil {
		return nil, err
	}
	if err := requireOutput(m, field); err != nil {
		return nil, err
	}
	final := &pmml.RegressionModel{
		ModelBase:           modelgraph.NewModelBase(pmml.MiningFunctionClassification, label),
		NormalizationMethod: norm,
		RegressionTables: []*pmml.RegressionTable{
			{
				TargetCategory:    label.Value(1),
				NumericPredictors: []*pmml.NumericPredictor{{Name: field, Coefficient: coefficient}},
			},
			{TargetCategory: label.Value(0)},
		},
	}
	return classificationChain([]pmml.Model{m, final}, label, hasProbability)
}

// Classification chains per-class models, model i exposing its predicted
// value as fields[i], with a final model normalising the K values into class
// probabilities.
func Classification(models []pmml.Model, fields []string, norm pmml.NormalizationMethod, hasProbability bool, s *schema.Schema) (*pmml.MiningModel, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize("Classification", "models", label.Size(), len(models)); err != nil {
		return nil, err
	}
	if err := errors.CheckSize("Classification", "fields", len(models), len(fields)); err != nil {
		return nil, err
	}
	tables := make([]*pmml.RegressionTable, len(models))
	for i, m := range models {
		if err := requireOutput(m, fields[i]); err != nil {
			return nil, err
		}
		tables[i] = &pmml.RegressionTable{
			TargetCategory:    label.Value(i),
			NumericPredictors: []*pmml.NumericPredictor{{Name: fields[i], Coefficient: 1}},
		}
	}
	final := &pmml.RegressionModel{
		ModelBase:           modelgraph.NewModelBase(pmml.MiningFunctionClassification, label),
		NormalizationMethod: norm,
		RegressionTables:    tables,
	}
	return classificationChain(append(append([]pmml.Model(nil), models...), final), label, hasProbability)
}

func classificationChain(members []pmml.Model, label *schema.CategoricalLabel, hasProbability bool) (*pmml.MiningModel, error) {
	mm, err := Chain(pmml.MiningFunctionClassification, label, members, pmml.MissingPredictionReturnMissing)
	if err != nil {
		return nil, err
	}
	if hasProbability {
		modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
	}
	return mm, nil
}

func requireOutput(m pmml.Model, field string) error {
	if modelgraph.OutputField(m, field) == nil {
		return errors.NewValueError("classification", "member model does not expose field "+field)
	}
	return nil
}
