package store

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Markers of the attribute dump format.
const (
	ClassMarker   = "__class__"
	NDArrayMarker = "__ndarray__"
	TupleMarker   = "__tuple__"
	IDMarker      = "__id__"
	RefMarker     = "__ref__"
)

// Format of an attribute dump.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// ref is a placeholder for an aliased value until all ids are known.
type ref struct {
	id string
}

type decoder struct {
	ids map[string]any
}

// Decode parses an attribute dump whose root is a persisted object.
func Decode(data []byte, format Format) (*Object, error) {
	if format == FormatAuto {
		format = sniffFormat(data)
	}

	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode JSON attribute dump")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "decode YAML attribute dump")
		}
	default:
		return nil, errors.Newf("unknown attribute dump format %d", format)
	}

	d := &decoder{ids: map[string]any{}}
	value, err := d.value(raw)
	if err != nil {
		return nil, err
	}
	value, err = d.resolve(value, map[*Object]bool{})
	if err != nil {
		return nil, err
	}

	root, ok := value.(*Object)
	if !ok {
		return nil, errors.NewValueError("Decode", fmt.Sprintf("root must be a %s object, got %s", ClassMarker, typeName(value)))
	}
	return root, nil
}

func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// value converts a generic decoded value into store values, registering ids.
func (d *decoder) value(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, bool, string, float64:
		return v, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case json.Number:
		return number(v.String())
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			converted, err := d.value(e)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		return d.mapping(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = e
		}
		return d.mapping(m)
	}
	return nil, errors.NewValueError("Decode", fmt.Sprintf("unsupported value of type %T", raw))
}

func number(s string) (any, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parse number %q", s)
	}
	return f, nil
}

func (d *decoder) mapping(m map[string]any) (any, error) {
	if id, ok := m[RefMarker]; ok {
		return &ref{id: fmt.Sprint(id)}, nil
	}

	var (
		result any
		err    error
	)
	switch {
	case m[ClassMarker] != nil:
		result, err = d.object(m)
	case m[NDArrayMarker] != nil:
		result, err = d.array(m)
	case m[TupleMarker] != nil:
		var elems any
		elems, err = d.value(m[TupleMarker])
		if err == nil {
			list, ok := elems.([]any)
			if !ok {
				return nil, errors.NewValueError("Decode", TupleMarker+" must hold a list")
			}
			result = Tuple(list)
		}
	default:
		values := make(map[string]any, len(m))
		for k, e := range m {
			if k == IDMarker {
				continue
			}
			if values[k], err = d.value(e); err != nil {
				return nil, err
			}
		}
		result = NewDict(values)
	}
	if err != nil {
		return nil, err
	}

	if id, ok := m[IDMarker]; ok {
		key := fmt.Sprint(id)
		if _, dup := d.ids[key]; dup {
			return nil, errors.NewValueError("Decode", fmt.Sprintf("duplicate %s %q", IDMarker, key))
		}
		d.ids[key] = result
	}
	return result, nil
}

func (d *decoder) object(m map[string]any) (*Object, error) {
	typeKey, ok := m[ClassMarker].(string)
	if !ok {
		return nil, errors.NewValueError("Decode", ClassMarker+" must be a string")
	}
	attrs := make(map[string]any, len(m))
	for k, e := range m {
		if k == ClassMarker || k == IDMarker {
			continue
		}
		v, err := d.value(e)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", typeKey, k)
		}
		attrs[k] = v
	}
	module, name := ParseTypeKey(typeKey)
	return NewObject(module, name, attrs), nil
}

func (d *decoder) array(m map[string]any) (*Array, error) {
	raw, err := d.value(m[NDArrayMarker])
	if err != nil {
		return nil, err
	}
	var (
		data  []any
		shape []int
	)
	if list, ok := raw.([]any); ok {
		data, shape = flatten(list)
	} else {
		data, shape = []any{raw}, []int{}
	}

	if s, ok := m["shape"]; ok {
		declared, err := d.value(s)
		if err != nil {
			return nil, err
		}
		dims, ok := declared.([]any)
		if !ok {
			return nil, errors.NewValueError("Decode", "ndarray shape must be a list")
		}
		shape = make([]int, len(dims))
		size := 1
		for i, dim := range dims {
			n, ok := toInteger(dim)
			if !ok {
				return nil, errors.NewValueError("Decode", "ndarray shape must hold integers")
			}
			shape[i] = n
			size *= n
		}
		if size != len(data) {
			return nil, errors.NewSchemaSizeError("Decode", "ndarray elements", size, len(data))
		}
	}

	dtype, _ := m["dtype"].(string)
	return &Array{Shape: shape, DType: dtype, Data: data}, nil
}

// flatten turns nested lists into row-major data plus the inferred shape.
func flatten(list []any) ([]any, []int) {
	if len(list) == 0 {
		return list, []int{0}
	}
	if _, nested := list[0].([]any); !nested {
		return list, []int{len(list)}
	}
	var (
		data  []any
		inner []int
	)
	for _, e := range list {
		sub, _ := e.([]any)
		subData, subShape := flatten(sub)
		data = append(data, subData...)
		inner = subShape
	}
	return data, append([]int{len(list)}, inner...)
}

// resolve replaces alias placeholders by the values they name.
func (d *decoder) resolve(v any, seen map[*Object]bool) (any, error) {
	switch v := v.(type) {
	case *ref:
		target, ok := d.ids[v.id]
		if !ok {
			return nil, errors.NewValueError("Decode", fmt.Sprintf("unresolved %s %q", RefMarker, v.id))
		}
		if _, isRef := target.(*ref); isRef {
			return nil, errors.NewValueError("Decode", fmt.Sprintf("%s %q names another reference", RefMarker, v.id))
		}
		return d.resolve(target, seen)
	case *Object:
		if seen[v] {
			return v, nil
		}
		seen[v] = true
		for _, k := range sortedKeys(v.attrs) {
			r, err := d.resolve(v.attrs[k], seen)
			if err != nil {
				return nil, err
			}
			v.attrs[k] = r
		}
		return v, nil
	case []any:
		for i, e := range v {
			r, err := d.resolve(e, seen)
			if err != nil {
				return nil, err
			}
			v[i] = r
		}
		return v, nil
	case Tuple:
		_, err := d.resolve([]any(v), seen)
		return v, err
	case *Array:
		_, err := d.resolve(v.Data, seen)
		return v, err
	case *Dict:
		for _, k := range v.Keys {
			r, err := d.resolve(v.Values[k], seen)
			if err != nil {
				return nil, err
			}
			v.Values[k] = r
		}
		return v, nil
	}
	return v, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
