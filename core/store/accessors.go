package store

import (
	"math"
	"strconv"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Has reports whether the attribute is present, even if its value is None.
func (o *Object) Has(name string) bool {
	_, ok := o.attrs[name]
	return ok
}

// Get returns the raw value of a required attribute.
func (o *Object) Get(name string) (any, error) {
	v, ok := o.attrs[name]
	if !ok {
		return nil, errors.NewAttributeMissingError(o.TypeKey(), name)
	}
	return v, nil
}

// GetOptional returns the raw value, or nil when the attribute is absent.
func (o *Object) GetOptional(name string) any {
	return o.attrs[name]
}

func (o *Object) typeError(name, expected string, actual any) error {
	return errors.NewAttributeTypeError(o.TypeKey(), name, expected, typeName(actual))
}

func toNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		// 特殊値 (nan, inf, -inf) は文字列で表現される
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(math.IsNaN(f) || math.IsInf(f, 0)) {
			return 0, false
		}
		return f, true
	case *Array:
		if len(v.Data) == 1 {
			return toNumber(v.Data[0])
		}
	}
	return 0, false
}

func toInteger(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case *Array:
		if len(v.Data) == 1 {
			return toInteger(v.Data[0])
		}
	}
	return 0, false
}

// GetNumber reads a numeric scalar.
func (o *Object) GetNumber(name string) (float64, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := toNumber(v)
	if !ok {
		return 0, o.typeError(name, "number", v)
	}
	return f, nil
}

// GetOptionalNumber returns nil when the attribute is absent or None.
func (o *Object) GetOptionalNumber(name string) (*float64, error) {
	if o.GetOptional(name) == nil {
		return nil, nil
	}
	f, err := o.GetNumber(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetInteger reads an integral scalar.
func (o *Object) GetInteger(name string) (int, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	i, ok := toInteger(v)
	if !ok {
		return 0, o.typeError(name, "int", v)
	}
	return i, nil
}

// GetBoolean reads a boolean scalar.
func (o *Object) GetBoolean(name string) (bool, error) {
	v, err := o.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, o.typeError(name, "bool", v)
	}
	return b, nil
}

// GetOptionalBoolean returns def when the attribute is absent or None.
func (o *Object) GetOptionalBoolean(name string, def bool) (bool, error) {
	if o.GetOptional(name) == nil {
		return def, nil
	}
	return o.GetBoolean(name)
}

// GetString reads a string scalar.
func (o *Object) GetString(name string) (string, error) {
	v, err := o.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", o.typeError(name, "str", v)
	}
	return s, nil
}

// GetOptionalString returns "" when the attribute is absent or None.
func (o *Object) GetOptionalString(name string) (string, error) {
	if o.GetOptional(name) == nil {
		return "", nil
	}
	return o.GetString(name)
}

// GetEnum reads a string that must be one of allowed.
func (o *Object) GetEnum(name string, allowed ...string) (string, error) {
	s, err := o.GetString(name)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", errors.NewInvalidAttributeValueError(o.TypeKey(), name, s, allowed...)
}

// GetArray reads an ndarray.
func (o *Object) GetArray(name string) (*Array, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	a, ok := v.(*Array)
	if !ok {
		return nil, o.typeError(name, "ndarray", v)
	}
	return a, nil
}

// GetArrayShape returns the shape of an ndarray of the given rank.
func (o *Object) GetArrayShape(name string, rank int) ([]int, error) {
	a, err := o.GetArray(name)
	if err != nil {
		return nil, err
	}
	if a.Rank() != rank {
		return nil, errors.NewAttributeTypeError(o.TypeKey(), name, "ndarray of rank "+strconv.Itoa(rank), typeName(a))
	}
	return a.Shape, nil
}

// GetList reads a list, a tuple or the elements of an ndarray.
func (o *Object) GetList(name string) ([]any, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case []any:
		return v, nil
	case Tuple:
		return []any(v), nil
	case *Array:
		return v.Data, nil
	}
	return nil, o.typeError(name, "list", v)
}

// GetOptionalList returns nil when the attribute is absent or None.
func (o *Object) GetOptionalList(name string) ([]any, error) {
	if o.GetOptional(name) == nil {
		return nil, nil
	}
	return o.GetList(name)
}

// GetNumberArray reads numbers from an ndarray, a list or a scalar.
func (o *Object) GetNumberArray(name string) ([]float64, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	if f, ok := toNumber(v); ok {
		if _, isArray := v.(*Array); !isArray {
			return []float64{f}, nil
		}
	}
	values, err := o.GetList(name)
	if err != nil {
		return nil, o.typeError(name, "number array", v)
	}
	out := make([]float64, len(values))
	for i, e := range values {
		f, ok := toNumber(e)
		if !ok {
			return nil, o.typeError(name, "number array", e)
		}
		out[i] = f
	}
	return out, nil
}

// GetOptionalNumberArray returns nil when the attribute is absent or None.
func (o *Object) GetOptionalNumberArray(name string) ([]float64, error) {
	if o.GetOptional(name) == nil {
		return nil, nil
	}
	return o.GetNumberArray(name)
}

// GetIntegerArray reads integers from an ndarray or a list.
func (o *Object) GetIntegerArray(name string) ([]int, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, e := range values {
		n, ok := toInteger(e)
		if !ok {
			return nil, o.typeError(name, "int array", e)
		}
		out[i] = n
	}
	return out, nil
}

// GetBooleanArray reads booleans from an ndarray or a list.
func (o *Object) GetBooleanArray(name string) ([]bool, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(values))
	for i, e := range values {
		b, ok := e.(bool)
		if !ok {
			return nil, o.typeError(name, "bool array", e)
		}
		out[i] = b
	}
	return out, nil
}

// GetStringArray reads strings from an ndarray or a list.
func (o *Object) GetStringArray(name string) ([]string, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, e := range values {
		s, ok := e.(string)
		if !ok {
			return nil, o.typeError(name, "str array", e)
		}
		out[i] = s
	}
	return out, nil
}

// GetObject reads a nested persisted object.
func (o *Object) GetObject(name string) (*Object, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, o.typeError(name, "object", v)
	}
	return obj, nil
}

// GetOptionalObject returns nil when the attribute is absent or None.
func (o *Object) GetOptionalObject(name string) (*Object, error) {
	if o.GetOptional(name) == nil {
		return nil, nil
	}
	return o.GetObject(name)
}

// GetObjectList reads a list whose elements are all objects.
func (o *Object) GetObjectList(name string) ([]*Object, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	return o.objects(name, values)
}

func (o *Object) objects(name string, values []any) ([]*Object, error) {
	out := make([]*Object, len(values))
	for i, e := range values {
		obj, ok := e.(*Object)
		if !ok {
			return nil, o.typeError(name, "list of objects", e)
		}
		out[i] = obj
	}
	return out, nil
}

// GetTupleList reads a list of tuples, such as Pipeline steps.
func (o *Object) GetTupleList(name string) ([]Tuple, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]Tuple, len(values))
	for i, e := range values {
		switch t := e.(type) {
		case Tuple:
			out[i] = t
		case []any:
			out[i] = Tuple(t)
		default:
			return nil, o.typeError(name, "list of tuples", e)
		}
	}
	return out, nil
}

// GetDict reads a dict.
func (o *Object) GetDict(name string) (*Dict, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*Dict)
	if !ok {
		return nil, o.typeError(name, "dict", v)
	}
	return d, nil
}

// GetMatrix reads a rank-2 numeric ndarray as row-major data with its shape.
// A rank-1 array is read as a single row.
func (o *Object) GetMatrix(name string) (rows, cols int, data []float64, err error) {
	a, err := o.GetArray(name)
	if err != nil {
		return 0, 0, nil, err
	}
	data, err = a.Numbers()
	if err != nil {
		return 0, 0, nil, o.typeError(name, "numeric ndarray", a)
	}
	switch a.Rank() {
	case 1:
		return 1, a.Shape[0], data, nil
	case 2:
		return a.Shape[0], a.Shape[1], data, nil
	}
	return 0, 0, nil, errors.NewAttributeTypeError(o.TypeKey(), name, "ndarray of rank 1 or 2", typeName(a))
}

// GetArrayList reads a list whose elements are ndarrays, lists or tuples,
// such as the per-column categories of an encoder.
func (o *Object) GetArrayList(name string) ([][]any, error) {
	values, err := o.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(values))
	for i, e := range values {
		switch e := e.(type) {
		case *Array:
			out[i] = e.Data
		case []any:
			out[i] = e
		case Tuple:
			out[i] = e
		default:
			return nil, o.typeError(name, "list of arrays", e)
		}
	}
	return out, nil
}

// GetIntegerArrayList reads a list of integer arrays, such as per-member
// feature subsets.
func (o *Object) GetIntegerArrayList(name string) ([][]int, error) {
	lists, err := o.GetArrayList(name)
	if err != nil {
		return nil, err
	}
	out := make([][]int, len(lists))
	for i, elements := range lists {
		out[i] = make([]int, len(elements))
		for j, v := range elements {
			n, ok := toInteger(v)
			if !ok {
				return nil, o.typeError(name, "list of int arrays", v)
			}
			out[i][j] = n
		}
	}
	return out, nil
}
