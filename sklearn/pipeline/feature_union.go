package pipeline

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// FeatureUnion applies every transformer to the same input and
// concatenates their outputs.
type FeatureUnion struct {
	model.Base
}

func NewFeatureUnion(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &FeatureUnion{Base: model.NewBase(obj, r)}, nil
}

func (u *FeatureUnion) transformers() ([]namedTransformer, error) {
	list, err := u.Object().GetTupleList("transformer_list")
	if err != nil {
		return nil, err
	}
	out := make([]namedTransformer, len(list))
	for i, entry := range list {
		if err := errors.CheckSize(u.TypeKey(), "transformer_list entry", 2, len(entry)); err != nil {
			return nil, err
		}
		name, _ := entry[0].(string)
		t, err := u.Registry().AsTransformer(entry[1])
		if err != nil {
			return nil, errors.Wrapf(err, "transformer %q", name)
		}
		out[i] = namedTransformer{name: name, Transformer: t}
	}
	return out, nil
}

func (u *FeatureUnion) NumberOfFeatures() int {
	if n := u.Base.NumberOfFeatures(); n >= 0 {
		return n
	}
	transformers, err := u.transformers()
	if err != nil {
		return -1
	}
	for _, t := range transformers {
		if n := t.NumberOfFeatures(); n >= 0 {
			return n
		}
	}
	return -1
}

func (u *FeatureUnion) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	transformers, err := u.transformers()
	if err != nil {
		return nil, err
	}
	var out []schema.Feature
	for _, t := range transformers {
		input := append([]schema.Feature(nil), features...)
		encoded, err := t.EncodeFeatures(input, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "transformer %q", t.name)
		}
		out = append(out, encoded...)
	}
	return out, nil
}
