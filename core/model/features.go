package model

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// InitialFeatures は先頭ステップの入力列をワイルドカード特徴量として作り、
// 連続値 double のデータフィールドを登録する。
// 列名は names、feature_names_in_、"x1".."xN" の優先順で決める。
func InitialFeatures(step Step, names []string, enc *schema.Encoder) ([]schema.Feature, error) {
	if len(names) == 0 {
		if h, ok := step.(HasFeatureNamesIn); ok {
			inNames, err := h.FeatureNamesIn()
			if err != nil {
				return nil, err
			}
			names = inNames
		}
	}

	// 列選択で必要な列だけを宣言する先頭ステップには特徴量を渡さない
	if len(names) == 0 {
		if h, ok := step.(HasHead); ok {
			head, err := h.Head()
			if err != nil {
				return nil, err
			}
			if _, lazy := head.(Initializer); lazy {
				return nil, nil
			}
		}
	}

	n := -1
	switch s := step.(type) {
	case Estimator:
		n = s.NumberOfFeatures()
	case Transformer:
		n = s.NumberOfFeatures()
	}
	if len(names) == 0 {
		if n < 0 {
			return nil, errors.NewAttributeMissingError(step.Object().TypeKey(), "n_features_in_")
		}
		names = make([]string, n)
		for i := range names {
			names[i] = "x" + strconv.Itoa(i+1)
		}
	}
	if n >= 0 {
		if err := errors.CheckSize(step.Object().TypeKey(), "features", n, len(names)); err != nil {
			return nil, err
		}
	}

	features := make([]schema.Feature, len(names))
	for i, name := range names {
		enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
		features[i] = schema.NewWildcardFeature(name, pmml.DataTypeDouble)
	}
	return features, nil
}

// SelectFeature は名前で入力列を選ぶ。特徴量がまだ無い場合は
// ワイルドカードのデータフィールドを宣言して返す。
func SelectFeature(owner, name string, features []schema.Feature, enc *schema.Encoder) (schema.Feature, error) {
	if len(features) == 0 {
		df := enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
		return schema.NewWildcardFeature(name, df.DataType), nil
	}
	names := make([]string, len(features))
	for i, f := range features {
		if f.Name() == name {
			return f, nil
		}
		names[i] = f.Name()
	}
	return nil, errors.NewInvalidAttributeValueError(owner, "columns", name, names...)
}
