// Package compose encodes ColumnTransformer and the "drop" and
// "passthrough" keyword steps.
package compose

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
)

// ColumnTransformer applies each fitted transformer to its column
// selection and concatenates the results, remainder last.
type ColumnTransformer struct {
	model.Base
}

func NewColumnTransformer(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &ColumnTransformer{Base: model.NewBase(obj, r)}, nil
}

// InitializeFeatures declares feature_names_in_ as input fields when they
// were recorded. Otherwise only the selected columns are declared.
func (ct *ColumnTransformer) InitializeFeatures(enc *schema.Encoder) ([]schema.Feature, error) {
	names, err := ct.FeatureNamesIn()
	if err != nil {
		return nil, err
	}
	features := make([]schema.Feature, len(names))
	for i, name := range names {
		features[i] = wildcardFeature(name, enc)
	}
	return ct.EncodeFeatures(features, enc)
}

func (ct *ColumnTransformer) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	fitted, err := ct.Object().GetTupleList("transformers_")
	if err != nil {
		return nil, err
	}
	var out []schema.Feature
	for _, entry := range fitted {
		if err := errors.CheckSize(ct.TypeKey(), "transformers_ entry", 3, len(entry)); err != nil {
			return nil, err
		}
		name, _ := entry[0].(string)
		transformer, err := ct.Registry().AsTransformer(entry[1])
		if err != nil {
			return nil, errors.Wrapf(err, "transformer %q", name)
		}
		selected, err := selectFeatures(ct.TypeKey(), entry[2], features, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "transformer %q", name)
		}
		encoded, err := transformer.EncodeFeatures(selected, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "transformer %q", name)
		}
		enc.Logger().Debug("Encoded column selection",
			log.StepKey, name,
			log.FeaturesKey, len(encoded),
		)
		out = append(out, encoded...)
	}
	return out, nil
}
