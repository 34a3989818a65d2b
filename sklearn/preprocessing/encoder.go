package preprocessing

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// OneHotEncoder は各列をカテゴリごとの二値特徴量に展開する
type OneHotEncoder struct {
	model.Base
}

func NewOneHotEncoder(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &OneHotEncoder{Base: model.NewBase(obj, r)}, nil
}

// NumberOfFeatures は categories_ の列数を返す
func (e *OneHotEncoder) NumberOfFeatures() int {
	if categories, err := e.Object().GetList("categories_"); err == nil {
		return len(categories)
	}
	return e.Base.NumberOfFeatures()
}

// dropIndices は drop_idx_ を列ごとの削除位置に変換する。削除しない列は -1
func (e *OneHotEncoder) dropIndices(n int) ([]int, error) {
	obj := e.Object()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = -1
	}
	if obj.GetOptional("drop_idx_") == nil {
		return indices, nil
	}
	values, err := obj.GetList("drop_idx_")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(obj.TypeKey(), "drop_idx_", n, len(values)); err != nil {
		return nil, err
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		index, ok := v.(int)
		if !ok {
			return nil, errors.NewAttributeTypeError(obj.TypeKey(), "drop_idx_", "int or None", schema.FormatValue(v))
		}
		indices[i] = index
	}
	return indices, nil
}

func (e *OneHotEncoder) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := e.Object()
	categories, err := obj.GetArrayList("categories_")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(obj.TypeKey(), "categories_", len(features), len(categories)); err != nil {
		return nil, err
	}
	if obj.GetOptional("handle_unknown") != nil {
		if _, err := obj.GetEnum("handle_unknown", "error", "ignore", "infrequent_if_exist", "warn"); err != nil {
			return nil, err
		}
	}
	infrequent, err := obj.GetOptionalBoolean("_infrequent_enabled", false)
	if err != nil {
		return nil, err
	}
	if infrequent {
		return nil, errors.NewUnsupportedVariantError(obj.TypeKey(), "infrequent categories")
	}
	drop, err := e.dropIndices(len(features))
	if err != nil {
		return nil, err
	}

	var out []schema.Feature
	for i, f := range features {
		values := categories[i]
		missing := len(values) > 0 && isMissingCategory(values[len(values)-1])
		if missing {
			values = values[:len(values)-1]
		}
		if drop[i] >= len(values) {
			return nil, errors.NewInvalidAttributeValueError(obj.TypeKey(), "drop_idx_", drop[i], "index below "+strconv.Itoa(len(values)))
		}

		strs, dataType := schema.ValuesOf(values)
		cat, err := schema.ToCategoricalFeature(f, enc, dataType, strs)
		if err != nil {
			return nil, err
		}
		for j, value := range strs {
			if j == drop[i] {
				continue
			}
			out = append(out, schema.NewBinaryFeature(cat.Name(), cat.DataType(), value))
		}
		if missing {
			name := modelgraph.FieldName("missingIndicator", cat.Name())
			if _, err := enc.CreateDerivedField(name, pmml.OpTypeCategorical, pmml.DataTypeBoolean, pmml.NewApply("isMissing", pmml.NewFieldRef(cat.Name()))); err != nil {
				return nil, err
			}
			out = append(out, schema.NewBooleanFeature(name))
		}
	}
	return out, nil
}

// isMissingCategory reports the trailing None or NaN category that
// scikit-learn keeps for missing values.
func isMissingCategory(v any) bool {
	return missingMarker(v) == nil
}
