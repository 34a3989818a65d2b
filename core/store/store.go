// Package store holds the attribute graph of a persisted, fitted estimator
// and the typed accessors encoders read it through.
//
// An Object is a read-only bag of attributes tagged with the (module, name)
// type key of the Python class it was pickled from. Values are one of:
// float64, int, bool, string, nil, []any, Tuple, *Array, *Dict or *Object.
package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Object is one persisted Python object.
type Object struct {
	module string
	name   string
	attrs  map[string]any
}

// NewObject creates an Object. The attribute map is owned by the Object.
func NewObject(module, name string, attrs map[string]any) *Object {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &Object{module: module, name: name, attrs: attrs}
}

// ParseTypeKey splits "module.Name" at the last dot.
func ParseTypeKey(key string) (module, name string) {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

func (o *Object) Module() string { return o.module }
func (o *Object) Name() string   { return o.name }

// TypeKey returns "module.Name".
func (o *Object) TypeKey() string {
	if o.module == "" {
		return o.name
	}
	return o.module + "." + o.name
}

func (o *Object) String() string {
	return o.TypeKey()
}

// Attributes returns the attribute names in sorted order.
func (o *Object) Attributes() []string {
	names := make([]string, 0, len(o.attrs))
	for name := range o.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tuple is a Python tuple.
type Tuple []any

// Dict is a Python dict with string keys, kept in key order.
type Dict struct {
	Keys   []string
	Values map[string]any
}

// NewDict creates a Dict with sorted keys.
func NewDict(values map[string]any) *Dict {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Dict{Keys: keys, Values: values}
}

func (d *Dict) Get(key string) (any, bool) {
	v, ok := d.Values[key]
	return v, ok
}

// Array is a numpy ndarray flattened in row-major order.
type Array struct {
	Shape []int
	DType string
	Data  []any
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.Data)
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Shape)
}

// Numbers converts all elements to float64.
func (a *Array) Numbers() ([]float64, error) {
	out := make([]float64, len(a.Data))
	for i, v := range a.Data {
		f, ok := toNumber(v)
		if !ok {
			return nil, errors.NewAttributeTypeError("ndarray", fmt.Sprintf("element %d", i), "number", typeName(v))
		}
		out[i] = f
	}
	return out, nil
}

// typeName names a value's type the way error messages show it.
func typeName(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case float64:
		return "float"
	case int:
		return "int"
	case bool:
		return "bool"
	case string:
		return "str"
	case []any:
		return "list"
	case Tuple:
		return "tuple"
	case *Dict:
		return "dict"
	case *Array:
		return fmt.Sprintf("ndarray%v", v.Shape)
	case *Object:
		return v.TypeKey()
	default:
		return fmt.Sprintf("%T", v)
	}
}
