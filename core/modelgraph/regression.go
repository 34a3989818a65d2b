package modelgraph

import (
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// RegressionTable builds a table with one predictor per non-zero
// coefficient. Binary features become categorical predictors, everything
// else is cast to a continuous feature.
func RegressionTable(features []schema.Feature, coefs []float64, intercept float64, enc *schema.Encoder) (*pmml.RegressionTable, error) {
	if err := errors.CheckSize("RegressionTable", "coefficients", len(features), len(coefs)); err != nil {
		return nil, err
	}
	if err := errors.CheckFinite("RegressionTable", "coefficients", coefs); err != nil {
		return nil, err
	}
	table := &pmml.RegressionTable{Intercept: intercept}

	var skipped []string
	for i, f := range features {
		coef := coefs[i]
		if coef == 0 {
			skipped = append(skipped, f.Name())
			continue
		}
		if binary, ok := f.(*schema.BinaryFeature); ok {
			table.CategoricalPredictors = append(table.CategoricalPredictors, &pmml.CategoricalPredictor{
				Name:        binary.Name(),
				Value:       binary.Value(),
				Coefficient: coef,
			})
			continue
		}
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		table.NumericPredictors = append(table.NumericPredictors, &pmml.NumericPredictor{Name: cf.Name(), Coefficient: coef})
	}

	if len(skipped) > 0 {
		enc.Logger().Debug("Skipped features with zero coefficients", log.FeaturesKey, skipped)
	}
	return table, nil
}

// NewRegression builds a single-table regression model over the features of s.
func NewRegression(s *schema.Schema, coefs []float64, intercept float64, norm pmml.NormalizationMethod) (*pmml.RegressionModel, error) {
	table, err := RegressionTable(s.Features(), coefs, intercept, s.Encoder())
	if err != nil {
		return nil, err
	}
	return &pmml.RegressionModel{
		ModelBase:           NewModelBase(pmml.MiningFunctionRegression, s.Label()),
		NormalizationMethod: normalization(norm),
		RegressionTables:    []*pmml.RegressionTable{table},
	}, nil
}

// NewBinaryLogisticClassification builds a two-class model whose first table
// scores the second class; the first class gets an empty table.
func NewBinaryLogisticClassification(s *schema.Schema, coefs []float64, intercept float64, norm pmml.NormalizationMethod, hasProbability bool) (*pmml.RegressionModel, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize("NewBinaryLogisticClassification", "classes", 2, label.Size()); err != nil {
		return nil, err
	}
	active, err := RegressionTable(s.Features(), coefs, intercept, s.Encoder())
	if err != nil {
		return nil, err
	}
	active.TargetCategory = label.Value(1)
	passive := &pmml.RegressionTable{TargetCategory: label.Value(0)}

	m := &pmml.RegressionModel{
		ModelBase:           NewModelBase(pmml.MiningFunctionClassification, s.Label()),
		NormalizationMethod: normalization(norm),
		RegressionTables:    []*pmml.RegressionTable{active, passive},
	}
	if hasProbability {
		AddOutputFields(m, ProbabilityFields(label)...)
	}
	return m, nil
}

// NewMultinomialClassification builds one table per class. Row i of coefs
// belongs to class i.
func NewMultinomialClassification(s *schema.Schema, coefs [][]float64, intercepts []float64, norm pmml.NormalizationMethod, hasProbability bool) (*pmml.RegressionModel, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize("NewMultinomialClassification", "classes", label.Size(), len(coefs)); err != nil {
		return nil, err
	}
	if err := errors.CheckSize("NewMultinomialClassification", "intercepts", label.Size(), len(intercepts)); err != nil {
		return nil, err
	}
	tables := make([]*pmml.RegressionTable, label.Size())
	for i := range tables {
		table, err := RegressionTable(s.Features(), coefs[i], intercepts[i], s.Encoder())
		if err != nil {
			return nil, err
		}
		table.TargetCategory = label.Value(i)
		tables[i] = table
	}
	m := &pmml.RegressionModel{
		ModelBase:           NewModelBase(pmml.MiningFunctionClassification, s.Label()),
		NormalizationMethod: normalization(norm),
		RegressionTables:    tables,
	}
	if hasProbability {
		AddOutputFields(m, ProbabilityFields(label)...)
	}
	return m, nil
}

func normalization(norm pmml.NormalizationMethod) pmml.NormalizationMethod {
	if norm == pmml.NormalizationNone {
		return ""
	}
	return norm
}
