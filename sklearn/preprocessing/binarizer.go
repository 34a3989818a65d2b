package preprocessing

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Binarizer は threshold を超える値を 1、それ以外を 0 にする
type Binarizer struct {
	model.Base
}

func NewBinarizer(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Binarizer{Base: model.NewBase(obj, r)}, nil
}

func (b *Binarizer) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	threshold := 0.0
	if b.Object().GetOptional("threshold") != nil {
		var err error
		if threshold, err = b.Object().GetNumber("threshold"); err != nil {
			return nil, err
		}
	}
	return deriveEach("binarizer", features, enc, func(_ int, x pmml.Expression) pmml.Expression {
		return pmml.NewApply("threshold", x, pmml.NewConstant(threshold))
	})
}
