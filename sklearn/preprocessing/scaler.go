// Package preprocessing encodes fitted scikit-learn preprocessing
// transformers as PMML derived fields.
package preprocessing

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// StandardScaler は学習済みの平均と標準偏差で (x - mean) / scale を計算する
type StandardScaler struct {
	model.Base
}

// NewStandardScaler は永続化オブジェクトから StandardScaler を作成する
func NewStandardScaler(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &StandardScaler{Base: model.NewBase(obj, r)}, nil
}

// scaleName は 0.16 の std_ と 0.17 以降の scale_ を切り替える
func (s *StandardScaler) scaleName() string {
	if s.Object().Has("std_") {
		return "std_"
	}
	return "scale_"
}

// NumberOfFeatures は mean_ または scale_ の長さを返す
func (s *StandardScaler) NumberOfFeatures() int {
	for _, name := range []string{"mean_", s.scaleName()} {
		if shape, err := s.Object().GetArrayShape(name, 1); err == nil {
			return shape[0]
		}
	}
	return s.Base.NumberOfFeatures()
}

// EncodeFeatures は各特徴量を標準化する。平均 0 かつ標準偏差 1 の列は変換しない
func (s *StandardScaler) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := s.Object()
	withMean, err := obj.GetOptionalBoolean("with_mean", true)
	if err != nil {
		return nil, err
	}
	withStd, err := obj.GetOptionalBoolean("with_std", true)
	if err != nil {
		return nil, err
	}
	if !withMean && !withStd {
		return features, nil
	}

	mean, err := optionalColumns(obj, "mean_", withMean, len(features))
	if err != nil {
		return nil, err
	}
	scale, err := optionalColumns(obj, s.scaleName(), withStd, len(features))
	if err != nil {
		return nil, err
	}
	return deriveEach("standardScaler", features, enc, func(i int, x pmml.Expression) pmml.Expression {
		return centerAndScale(x, at(mean, i, 0), at(scale, i, 1))
	})
}

// MinMaxScaler は x * scale_ + min_ を計算し、clip が有効なら feature_range に収める
type MinMaxScaler struct {
	model.Base
}

func NewMinMaxScaler(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &MinMaxScaler{Base: model.NewBase(obj, r)}, nil
}

func (s *MinMaxScaler) NumberOfFeatures() int {
	if shape, err := s.Object().GetArrayShape("scale_", 1); err == nil {
		return shape[0]
	}
	return s.Base.NumberOfFeatures()
}

func (s *MinMaxScaler) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := s.Object()
	offset, err := columns(obj, "min_", len(features))
	if err != nil {
		return nil, err
	}
	scale, err := columns(obj, "scale_", len(features))
	if err != nil {
		return nil, err
	}
	clip, err := obj.GetOptionalBoolean("clip", false)
	if err != nil {
		return nil, err
	}
	var bounds []float64
	if clip {
		if bounds, err = obj.GetNumberArray("feature_range"); err != nil {
			return nil, err
		}
		if err := errors.CheckSize(obj.TypeKey(), "feature_range", 2, len(bounds)); err != nil {
			return nil, err
		}
	}

	return deriveEach("minMaxScaler", features, enc, func(i int, x pmml.Expression) pmml.Expression {
		if scale[i] != 1 {
			x = pmml.NewApply("*", x, pmml.NewConstant(scale[i]))
		}
		if offset[i] != 0 {
			x = pmml.NewApply("+", x, pmml.NewConstant(offset[i]))
		}
		if clip {
			x = pmml.NewApply("max", pmml.NewApply("min", x, pmml.NewConstant(bounds[1])), pmml.NewConstant(bounds[0]))
		}
		return x
	})
}

// MaxAbsScaler は x / scale_ を計算する
type MaxAbsScaler struct {
	model.Base
}

func NewMaxAbsScaler(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &MaxAbsScaler{Base: model.NewBase(obj, r)}, nil
}

func (s *MaxAbsScaler) NumberOfFeatures() int {
	if shape, err := s.Object().GetArrayShape("scale_", 1); err == nil {
		return shape[0]
	}
	return s.Base.NumberOfFeatures()
}

func (s *MaxAbsScaler) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	scale, err := columns(s.Object(), "scale_", len(features))
	if err != nil {
		return nil, err
	}
	return deriveEach("maxAbsScaler", features, enc, func(i int, x pmml.Expression) pmml.Expression {
		return centerAndScale(x, 0, scale[i])
	})
}

// RobustScaler は中央値と四分位範囲で (x - center_) / scale_ を計算する
type RobustScaler struct {
	model.Base
}

func NewRobustScaler(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &RobustScaler{Base: model.NewBase(obj, r)}, nil
}

func (s *RobustScaler) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := s.Object()
	withCentering, err := obj.GetOptionalBoolean("with_centering", true)
	if err != nil {
		return nil, err
	}
	withScaling, err := obj.GetOptionalBoolean("with_scaling", true)
	if err != nil {
		return nil, err
	}
	if !withCentering && !withScaling {
		return features, nil
	}
	center, err := optionalColumns(obj, "center_", withCentering, len(features))
	if err != nil {
		return nil, err
	}
	scale, err := optionalColumns(obj, "scale_", withScaling, len(features))
	if err != nil {
		return nil, err
	}
	return deriveEach("robustScaler", features, enc, func(i int, x pmml.Expression) pmml.Expression {
		return centerAndScale(x, at(center, i, 0), at(scale, i, 1))
	})
}

// columns は列ごとの係数配列を読み、特徴量数と一致することを確認する
func columns(obj *store.Object, name string, n int) ([]float64, error) {
	values, err := obj.GetNumberArray(name)
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(obj.TypeKey(), name, n, len(values)); err != nil {
		return nil, err
	}
	return values, nil
}

// optionalColumns returns nil when the statistic is switched off or was
// not stored.
func optionalColumns(obj *store.Object, name string, enabled bool, n int) ([]float64, error) {
	if !enabled || obj.GetOptional(name) == nil {
		return nil, nil
	}
	return columns(obj, name, n)
}

func at(values []float64, i int, def float64) float64 {
	if values == nil {
		return def
	}
	return values[i]
}

func centerAndScale(x pmml.Expression, center, scale float64) pmml.Expression {
	if center != 0 {
		x = pmml.NewApply("-", x, pmml.NewConstant(center))
	}
	if scale != 1 {
		x = pmml.NewApply("/", x, pmml.NewConstant(scale))
	}
	return x
}

// deriveEach casts every feature to continuous and registers
// function(name) = build(i, name). Columns whose expression is the bare
// field reference pass through unchanged.
func deriveEach(function string, features []schema.Feature, enc *schema.Encoder, build func(i int, x pmml.Expression) pmml.Expression) ([]schema.Feature, error) {
	out := make([]schema.Feature, len(features))
	for i, f := range features {
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		ref := pmml.NewFieldRef(cf.Name())
		expr := build(i, ref)
		if expr == pmml.Expression(ref) {
			out[i] = cf
			continue
		}
		name := modelgraph.FieldName(function, cf.Name())
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, expr); err != nil {
			return nil, err
		}
		out[i] = schema.NewContinuousFeature(name, pmml.DataTypeDouble)
	}
	return out, nil
}
