package compose

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
)

const (
	KeywordDrop        = "drop"
	KeywordPassThrough = "passthrough"
)

// Drop discards its input columns.
type Drop struct {
	obj *store.Object
}

func NewDrop() model.Transformer {
	return &Drop{obj: model.NewKeywordObject(KeywordDrop)}
}

func (d *Drop) Object() *store.Object { return d.obj }
func (d *Drop) NumberOfFeatures() int { return -1 }

func (d *Drop) EncodeFeatures([]schema.Feature, *schema.Encoder) ([]schema.Feature, error) {
	return nil, nil
}

// PassThrough returns its input columns unchanged.
type PassThrough struct {
	obj *store.Object
}

func NewPassThrough() model.Transformer {
	return &PassThrough{obj: model.NewKeywordObject(KeywordPassThrough)}
}

func (p *PassThrough) Object() *store.Object { return p.obj }
func (p *PassThrough) NumberOfFeatures() int { return -1 }

func (p *PassThrough) EncodeFeatures(features []schema.Feature, _ *schema.Encoder) ([]schema.Feature, error) {
	return features, nil
}

// IsPassThrough reports whether t leaves its input unchanged.
func IsPassThrough(t model.Transformer) bool {
	_, ok := t.(*PassThrough)
	return ok
}
