// Package crossref encodes Memorizer and Recaller, which pass features
// between otherwise unrelated branches of a pipeline by name.
package crossref

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
)

type Memorizer struct {
	model.Base
}

func NewMemorizer(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Memorizer{Base: model.NewBase(obj, r)}, nil
}

func (m *Memorizer) NumberOfFeatures() int {
	names, err := m.Object().GetStringArray("names")
	if err != nil {
		return -1
	}
	return len(names)
}

// EncodeFeatures stores each feature under its name and produces no output
// columns.
func (m *Memorizer) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	names, err := m.Object().GetStringArray("names")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(m.TypeKey(), "names", len(names), len(features)); err != nil {
		return nil, err
	}
	for i, name := range names {
		enc.Memorize(name, features[i:i+1])
	}
	enc.Logger().Debug("memorized features", log.FeaturesKey, names)
	return []schema.Feature{}, nil
}

type Recaller struct {
	model.Base
}

func NewRecaller(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Recaller{Base: model.NewBase(obj, r)}, nil
}

func (r *Recaller) NumberOfFeatures() int {
	return -1
}

// EncodeFeatures ignores its input and returns the memorized features in
// the order of names.
func (r *Recaller) EncodeFeatures(_ []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	names, err := r.Object().GetStringArray("names")
	if err != nil {
		return nil, err
	}
	var out []schema.Feature
	for _, name := range names {
		features, err := enc.Recall(name)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", r.TypeKey())
		}
		out = append(out, features...)
	}
	return out, nil
}

func Register(r *model.Registry) {
	r.Register("sklearn2pmml.cross_reference", "Memorizer", NewMemorizer)
	r.Register("sklearn2pmml.cross_reference", "Recaller", NewRecaller)
}
