package preprocessing

import (
	"math"
	"strings"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// SimpleImputer replaces missing values by the fitted statistics_. With
// add_indicator, one boolean missingIndicator feature per column follows
// the imputed columns.
type SimpleImputer struct {
	model.Base
}

func NewSimpleImputer(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &SimpleImputer{Base: model.NewBase(obj, r)}, nil
}

func (imp *SimpleImputer) NumberOfFeatures() int {
	if shape, err := imp.Object().GetArrayShape("statistics_", 1); err == nil {
		return shape[0]
	}
	return imp.Base.NumberOfFeatures()
}

func (imp *SimpleImputer) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := imp.Object()
	if _, err := obj.GetEnum("strategy", "mean", "median", "most_frequent", "constant"); err != nil {
		return nil, err
	}
	statistics, err := obj.GetList("statistics_")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(obj.TypeKey(), "statistics_", len(features), len(statistics)); err != nil {
		return nil, err
	}
	addIndicator, err := obj.GetOptionalBoolean("add_indicator", false)
	if err != nil {
		return nil, err
	}
	missingValue := missingMarker(obj.GetOptional("missing_values"))

	var imputed, indicators []schema.Feature
	for i, f := range features {
		if addIndicator {
			name := modelgraph.FieldName("missingIndicator", f.Name())
			if _, err := enc.CreateDerivedField(name, pmml.OpTypeCategorical, pmml.DataTypeBoolean, isMissing(f, missingValue)); err != nil {
				return nil, err
			}
			indicators = append(indicators, schema.NewBooleanFeature(name))
		}
		feature, err := impute(obj.TypeKey(), f, statistics[i], missingValue, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "impute column %d", i)
		}
		imputed = append(imputed, feature)
	}
	return append(imputed, indicators...), nil
}

// missingMarker returns nil when missing values are NaN or None, which
// PMML treats as missing already.
func missingMarker(v any) any {
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) {
			return nil
		}
	case string:
		if strings.EqualFold(v, "nan") {
			return nil
		}
	}
	return v
}

func constantOf(v any, dataType pmml.DataType) *pmml.Constant {
	return &pmml.Constant{DataType: dataType, Value: schema.FormatValue(v)}
}

func isMissing(f schema.Feature, missingValue any) pmml.Expression {
	ref := pmml.NewFieldRef(f.Name())
	if missingValue == nil {
		return pmml.NewApply("isMissing", ref)
	}
	return pmml.NewApply("equal", ref, constantOf(missingValue, f.DataType()))
}

// impute builds imputer(name) = if(missing, statistic, name). Numeric
// statistics yield continuous features, anything else a string feature.
func impute(owner string, f schema.Feature, statistic, missingValue any, enc *schema.Encoder) (schema.Feature, error) {
	name := modelgraph.FieldName("imputer", f.Name())
	switch statistic.(type) {
	case float64, int:
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		expr := pmml.NewApply("if", isMissing(cf, missingValue), constantOf(statistic, cf.DataType()), pmml.NewFieldRef(cf.Name()))
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, cf.DataType(), expr); err != nil {
			return nil, err
		}
		return schema.NewContinuousFeature(name, cf.DataType()), nil
	case string:
		if _, ok := f.(*schema.WildcardFeature); ok {
			enc.UpdateDataField(f.Name(), pmml.OpTypeCategorical, pmml.DataTypeString, nil)
		}
		expr := pmml.NewApply("if", isMissing(f, missingValue), constantOf(statistic, pmml.DataTypeString), pmml.NewFieldRef(f.Name()))
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeCategorical, pmml.DataTypeString, expr); err != nil {
			return nil, err
		}
		return schema.NewStringFeature(name), nil
	}
	return nil, errors.NewInvalidAttributeValueError(owner, "statistics_", schema.FormatValue(statistic), "number or string")
}
