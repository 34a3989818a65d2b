// Package schema holds the label and feature algebra that flows between
// pipeline steps, and the per-conversion Encoder context.
package schema

import (
	"fmt"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Schema is an immutable (label, features) pair bound to an Encoder.
type Schema struct {
	enc      *Encoder
	label    Label
	features []Feature
}

func New(enc *Encoder, label Label, features []Feature) *Schema {
	return &Schema{enc: enc, label: label, features: features}
}

func (s *Schema) Encoder() *Encoder     { return s.enc }
func (s *Schema) Label() Label          { return s.label }
func (s *Schema) Features() []Feature   { return s.features }
func (s *Schema) Feature(i int) Feature { return s.features[i] }
func (s *Schema) NumberOfFeatures() int { return len(s.features) }

// SubSchema selects features by index. An out-of-range index is a
// programming error and panics.
func (s *Schema) SubSchema(indices []int) *Schema {
	features := make([]Feature, len(indices))
	for i, index := range indices {
		if index < 0 || index >= len(s.features) {
			panic(fmt.Sprintf("SubSchema: index %d out of range [0, %d)", index, len(s.features)))
		}
		features[i] = s.features[index]
	}
	return &Schema{enc: s.enc, label: s.label, features: features}
}

// ToAnonymous strips the label name.
func (s *Schema) ToAnonymous() *Schema {
	if s.label == nil || s.label.Name() == "" {
		return s
	}
	return s.Relabel(s.label.WithName(""))
}

// ToAnonymousRegressor replaces the label by an anonymous continuous one.
func (s *Schema) ToAnonymousRegressor(dataType pmml.DataType) *Schema {
	return s.Relabel(NewContinuousLabel("", dataType))
}

func (s *Schema) Relabel(label Label) *Schema {
	return &Schema{enc: s.enc, label: label, features: s.features}
}

// ToEmpty keeps the label and drops all features.
func (s *Schema) ToEmpty() *Schema {
	return &Schema{enc: s.enc, label: s.label}
}

func (s *Schema) WithFeatures(features []Feature) *Schema {
	return &Schema{enc: s.enc, label: s.label, features: features}
}

// CategoricalLabel returns the label as a CategoricalLabel.
func (s *Schema) CategoricalLabel() (*CategoricalLabel, error) {
	switch l := s.label.(type) {
	case *CategoricalLabel:
		return l, nil
	case *OrdinalLabel:
		return &l.CategoricalLabel, nil
	}
	return nil, errors.NewCapabilityCastError("schema", labelKind(s.label), "categorical label")
}

// ContinuousLabel returns the label as a ContinuousLabel.
func (s *Schema) ContinuousLabel() (*ContinuousLabel, error) {
	if l, ok := s.label.(*ContinuousLabel); ok {
		return l, nil
	}
	return nil, errors.NewCapabilityCastError("schema", labelKind(s.label), "continuous label")
}

func labelKind(l Label) string {
	switch l.(type) {
	case nil:
		return "no label"
	case *ContinuousLabel:
		return "continuous label"
	case *CategoricalLabel, *OrdinalLabel:
		return "categorical label"
	case *MultiLabel:
		return "multi label"
	}
	return fmt.Sprintf("%T", l)
}

// ContinuousFeatures casts every feature with ToContinuousFeature.
func (s *Schema) ContinuousFeatures() ([]*ContinuousFeature, error) {
	out := make([]*ContinuousFeature, len(s.features))
	for i, f := range s.features {
		cf, err := ToContinuousFeature(f, s.enc)
		if err != nil {
			return nil, err
		}
		out[i] = cf
	}
	return out, nil
}

// CheckFeatures fails with SchemaSizeMismatch unless the schema has n features.
func (s *Schema) CheckFeatures(op string, n int) error {
	return errors.CheckSize(op, "features", n, len(s.features))
}
