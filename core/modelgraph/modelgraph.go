// Package modelgraph builds the PMML model elements that several estimator
// families share: mining schemas, output fields and regression tables.
package modelgraph

import (
	"strings"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Names of the output fields encoders expose.
const (
	FieldProbability      = "probability"
	FieldDecisionFunction = "decisionFunction"
	FieldPredict          = "predict"
	FieldThresholded      = "thresholded"
)

// FieldName formats a function-style field name such as "probability(yes)".
func FieldName(function string, args ...string) string {
	if len(args) == 0 {
		return function
	}
	return function + "(" + strings.Join(args, ", ") + ")"
}

// NewMiningSchema lists the target fields of label. Active fields are added
// later by Complete.
func NewMiningSchema(label schema.Label) *pmml.MiningSchema {
	ms := &pmml.MiningSchema{}
	addTargets(ms, label)
	return ms
}

func addTargets(ms *pmml.MiningSchema, label schema.Label) {
	switch l := label.(type) {
	case nil:
	case *schema.MultiLabel:
		for _, child := range l.Labels() {
			addTargets(ms, child)
		}
	default:
		if l.Name() == "" {
			return
		}
		ms.MiningFields = append(ms.MiningFields, &pmml.MiningField{Name: l.Name(), UsageType: pmml.UsageTarget})
	}
}

// NewModelBase creates the shared part of a model predicting label.
func NewModelBase(fn pmml.MiningFunction, label schema.Label) pmml.ModelBase {
	return pmml.ModelBase{FunctionName: fn, MiningSchema: NewMiningSchema(label)}
}

// PredictedField exposes the predicted value of a model under name.
func PredictedField(name string, opType pmml.OpType, dataType pmml.DataType) *pmml.OutputField {
	return &pmml.OutputField{Name: name, OpType: opType, DataType: dataType, Feature: pmml.ResultPredictedValue}
}

// TransformedField exposes expr, evaluated after the model, under name.
func TransformedField(name string, opType pmml.OpType, dataType pmml.DataType, expr pmml.Expression) *pmml.OutputField {
	return &pmml.OutputField{Name: name, OpType: opType, DataType: dataType, Feature: pmml.ResultTransformedValue, Expression: expr}
}

// ProbabilityFields creates one probability output field per class.
func ProbabilityFields(label *schema.CategoricalLabel) []*pmml.OutputField {
	fields := make([]*pmml.OutputField, label.Size())
	for i, value := range label.Values() {
		fields[i] = &pmml.OutputField{
			Name:     FieldName(FieldProbability, value),
			OpType:   pmml.OpTypeContinuous,
			DataType: pmml.DataTypeDouble,
			Feature:  pmml.ResultProbability,
			Value:    value,
		}
	}
	return fields
}

// AddOutputFields appends fields to the output of m. The output element is
// replaced, so copies of m made earlier keep their own output.
func AddOutputFields(m pmml.Model, fields ...*pmml.OutputField) {
	base := m.Base()
	output := base.Output.Copy()
	output.OutputFields = append(output.OutputFields, fields...)
	base.Output = output
}

// OutputField returns the output field of m with the given name, or nil.
func OutputField(m pmml.Model, name string) *pmml.OutputField {
	output := m.Base().Output
	if output == nil {
		return nil
	}
	for _, f := range output.OutputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
