package schema

import (
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Feature is one column flowing between pipeline steps, backed by a data
// field or a derived field of the same name.
type Feature interface {
	Name() string
	DataType() pmml.DataType
	OpType() pmml.OpType
}

// WildcardFeature is an input column whose operational type is not known
// yet. The first transformer that needs a concrete type decides it.
type WildcardFeature struct {
	name     string
	dataType pmml.DataType
}

func NewWildcardFeature(name string, dataType pmml.DataType) *WildcardFeature {
	return &WildcardFeature{name: name, dataType: dataType}
}

func (f *WildcardFeature) Name() string            { return f.name }
func (f *WildcardFeature) DataType() pmml.DataType { return f.dataType }
func (f *WildcardFeature) OpType() pmml.OpType     { return pmml.OpTypeContinuous }

type ContinuousFeature struct {
	name     string
	dataType pmml.DataType
}

func NewContinuousFeature(name string, dataType pmml.DataType) *ContinuousFeature {
	return &ContinuousFeature{name: name, dataType: dataType}
}

func (f *ContinuousFeature) Name() string            { return f.name }
func (f *ContinuousFeature) DataType() pmml.DataType { return f.dataType }
func (f *ContinuousFeature) OpType() pmml.OpType     { return pmml.OpTypeContinuous }

type CategoricalFeature struct {
	name     string
	dataType pmml.DataType
	values   []string
}

func NewCategoricalFeature(name string, dataType pmml.DataType, values []string) *CategoricalFeature {
	return &CategoricalFeature{name: name, dataType: dataType, values: values}
}

func (f *CategoricalFeature) Name() string            { return f.name }
func (f *CategoricalFeature) DataType() pmml.DataType { return f.dataType }
func (f *CategoricalFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }
func (f *CategoricalFeature) Values() []string        { return f.values }

type OrdinalFeature struct {
	CategoricalFeature
}

func NewOrdinalFeature(name string, dataType pmml.DataType, values []string) *OrdinalFeature {
	return &OrdinalFeature{CategoricalFeature{name: name, dataType: dataType, values: values}}
}

func (f *OrdinalFeature) OpType() pmml.OpType { return pmml.OpTypeOrdinal }

type BooleanFeature struct {
	name string
}

func NewBooleanFeature(name string) *BooleanFeature {
	return &BooleanFeature{name: name}
}

func (f *BooleanFeature) Name() string            { return f.name }
func (f *BooleanFeature) DataType() pmml.DataType { return pmml.DataTypeBoolean }
func (f *BooleanFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }
func (f *BooleanFeature) Values() []string        { return []string{"false", "true"} }

type StringFeature struct {
	name string
}

func NewStringFeature(name string) *StringFeature {
	return &StringFeature{name: name}
}

func (f *StringFeature) Name() string            { return f.name }
func (f *StringFeature) DataType() pmml.DataType { return pmml.DataTypeString }
func (f *StringFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }

type ObjectFeature struct {
	name string
}

func NewObjectFeature(name string) *ObjectFeature {
	return &ObjectFeature{name: name}
}

func (f *ObjectFeature) Name() string            { return f.name }
func (f *ObjectFeature) DataType() pmml.DataType { return pmml.DataTypeString }
func (f *ObjectFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }

// BinaryFeature is the one-hot indicator "field equals value". Name is the
// name of the underlying categorical field.
type BinaryFeature struct {
	name     string
	dataType pmml.DataType
	value    string
}

func NewBinaryFeature(name string, dataType pmml.DataType, value string) *BinaryFeature {
	return &BinaryFeature{name: name, dataType: dataType, value: value}
}

func (f *BinaryFeature) Name() string            { return f.name }
func (f *BinaryFeature) DataType() pmml.DataType { return f.dataType }
func (f *BinaryFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }
func (f *BinaryFeature) Value() string           { return f.value }

// Bin is one bin of a BinnedFeature. A nil Predicate marks a bin that can
// never match, such as an empty special-values bin.
type Bin struct {
	Label     string
	Predicate pmml.Predicate
}

// BinnedFeature is an optbinning-style binned column; each bin carries the
// predicate selecting it.
type BinnedFeature struct {
	name     string
	dataType pmml.DataType
	bins     []Bin
}

func NewBinnedFeature(name string, dataType pmml.DataType, bins []Bin) *BinnedFeature {
	return &BinnedFeature{name: name, dataType: dataType, bins: bins}
}

func (f *BinnedFeature) Name() string            { return f.name }
func (f *BinnedFeature) DataType() pmml.DataType { return f.dataType }
func (f *BinnedFeature) OpType() pmml.OpType     { return pmml.OpTypeCategorical }
func (f *BinnedFeature) Bins() []Bin             { return f.bins }

// ToContinuousFeature casts f for use as a numeric predictor.
func ToContinuousFeature(f Feature, enc *Encoder) (*ContinuousFeature, error) {
	switch f := f.(type) {
	case *ContinuousFeature:
		return f, nil
	case *WildcardFeature:
		enc.UpdateDataField(f.name, pmml.OpTypeContinuous, f.dataType, nil)
		return NewContinuousFeature(f.name, f.dataType), nil
	case *BinaryFeature:
		name := f.name + "=" + f.value
		expr := pmml.NewApply("if",
			pmml.NewApply("equal", pmml.NewFieldRef(f.name), &pmml.Constant{DataType: f.dataType, Value: f.value}),
			pmml.NewConstant(1), pmml.NewConstant(0))
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, expr); err != nil {
			return nil, err
		}
		return NewContinuousFeature(name, pmml.DataTypeDouble), nil
	case *BooleanFeature:
		name := "double(" + f.name + ")"
		expr := pmml.NewApply("if", pmml.NewFieldRef(f.name), pmml.NewConstant(1), pmml.NewConstant(0))
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, expr); err != nil {
			return nil, err
		}
		return NewContinuousFeature(name, pmml.DataTypeDouble), nil
	case *BinnedFeature:
		// bin values are already numbers
		name := "double(" + f.name + ")"
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, pmml.NewFieldRef(f.name)); err != nil {
			return nil, err
		}
		return NewContinuousFeature(name, pmml.DataTypeDouble), nil
	}
	return nil, errors.NewCapabilityCastError(f.Name(), string(f.OpType())+" feature", "continuous feature")
}

// ToCategoricalFeature casts a wildcard column to a categorical one with the
// given domain, updating its data field.
func ToCategoricalFeature(f Feature, enc *Encoder, dataType pmml.DataType, values []string) (*CategoricalFeature, error) {
	switch f := f.(type) {
	case *CategoricalFeature:
		return f, nil
	case *WildcardFeature, *StringFeature, *ObjectFeature:
		enc.UpdateDataField(f.Name(), pmml.OpTypeCategorical, dataType, values)
		return NewCategoricalFeature(f.Name(), dataType, values), nil
	case *ContinuousFeature:
		return NewCategoricalFeature(f.name, dataType, values), nil
	}
	return nil, errors.NewCapabilityCastError(f.Name(), string(f.OpType())+" feature", "categorical feature")
}
