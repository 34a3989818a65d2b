package compose

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// columnList normalises a column selector to a list of names and indices.
// Boolean masks become the indices of their true positions.
func columnList(owner string, columns any) ([]any, error) {
	var values []any
	switch c := columns.(type) {
	case string, int:
		return []any{c}, nil
	case []any:
		values = append(values, c...)
	case store.Tuple:
		values = append(values, c...)
	case *store.Array:
		values = append(values, c.Data...)
	case *store.Object:
		// _RemainderColsList (1.5+) wraps the remainder columns in "data"
		data, err := c.GetList("data")
		if err != nil {
			return nil, err
		}
		return columnList(owner, data)
	default:
		return nil, errors.NewAttributeTypeError(owner, "columns", "str, int, list or mask", schema.FormatValue(columns))
	}

	for i := len(values) - 1; i >= 0; i-- {
		b, ok := values[i].(bool)
		if !ok {
			continue
		}
		if b {
			values[i] = i
		} else {
			values = append(values[:i], values[i+1:]...)
		}
	}
	return values, nil
}

// selectFeatures picks the selected columns out of features. Against an
// empty feature list the columns are synthesised as wildcard features.
func selectFeatures(owner string, columns any, features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	values, err := columnList(owner, columns)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Feature, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			f, err := model.SelectFeature(owner, v, features, enc)
			if err != nil {
				return nil, err
			}
			out[i] = f
		case int:
			if len(features) == 0 {
				if v < 0 {
					return nil, errors.NewInvalidAttributeValueError(owner, "columns", v, "non-negative index")
				}
				out[i] = wildcardFeature("x"+strconv.Itoa(v+1), enc)
				continue
			}
			index := v
			if index < 0 {
				index += len(features)
			}
			if index < 0 || index >= len(features) {
				return nil, errors.NewInvalidAttributeValueError(owner, "columns", v, "index below "+strconv.Itoa(len(features)))
			}
			out[i] = features[index]
		default:
			return nil, errors.NewAttributeTypeError(owner, "columns", "str or int", schema.FormatValue(v))
		}
	}
	return out, nil
}

func wildcardFeature(name string, enc *schema.Encoder) schema.Feature {
	df := enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
	return schema.NewWildcardFeature(name, df.DataType)
}
