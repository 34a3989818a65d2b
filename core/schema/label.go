package schema

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/pmml"
)

// Label describes the target of an estimator. An empty name makes the label
// anonymous: nested ensemble members predict into no named field.
type Label interface {
	Name() string
	DataType() pmml.DataType
	// WithName returns a copy of the label under another name.
	WithName(name string) Label
}

type ContinuousLabel struct {
	name     string
	dataType pmml.DataType
}

func NewContinuousLabel(name string, dataType pmml.DataType) *ContinuousLabel {
	return &ContinuousLabel{name: name, dataType: dataType}
}

func (l *ContinuousLabel) Name() string            { return l.name }
func (l *ContinuousLabel) DataType() pmml.DataType { return l.dataType }
func (l *ContinuousLabel) WithName(name string) Label {
	return &ContinuousLabel{name: name, dataType: l.dataType}
}

// CategoricalLabel carries the class values in estimator order. Index i of a
// coefficient row or probability vector belongs to Values[i].
type CategoricalLabel struct {
	name     string
	dataType pmml.DataType
	values   []string
}

func NewCategoricalLabel(name string, dataType pmml.DataType, values []string) *CategoricalLabel {
	return &CategoricalLabel{name: name, dataType: dataType, values: values}
}

func (l *CategoricalLabel) Name() string            { return l.name }
func (l *CategoricalLabel) DataType() pmml.DataType { return l.dataType }
func (l *CategoricalLabel) Values() []string        { return l.values }
func (l *CategoricalLabel) Size() int               { return len(l.values) }
func (l *CategoricalLabel) Value(i int) string      { return l.values[i] }
func (l *CategoricalLabel) WithName(name string) Label {
	return &CategoricalLabel{name: name, dataType: l.dataType, values: l.values}
}

// OrdinalLabel is a CategoricalLabel whose values are ordered.
type OrdinalLabel struct {
	CategoricalLabel
}

func NewOrdinalLabel(name string, dataType pmml.DataType, values []string) *OrdinalLabel {
	return &OrdinalLabel{CategoricalLabel{name: name, dataType: dataType, values: values}}
}

func (l *OrdinalLabel) WithName(name string) Label {
	return NewOrdinalLabel(name, l.dataType, l.values)
}

// MultiLabel is the label of a multi-output estimator.
type MultiLabel struct {
	labels []Label
}

func NewMultiLabel(labels []Label) *MultiLabel {
	return &MultiLabel{labels: labels}
}

func (l *MultiLabel) Name() string            { return "" }
func (l *MultiLabel) DataType() pmml.DataType { return "" }
func (l *MultiLabel) Labels() []Label         { return l.labels }
func (l *MultiLabel) WithName(string) Label   { return l }

// FormatValue renders a decoded class or category value as a PMML value.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return pmml.FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	}
	return ""
}

// ValuesOf formats values and infers their common PMML data type.
func ValuesOf(values []any) ([]string, pmml.DataType) {
	out := make([]string, len(values))
	dataType := pmml.DataType("")
	for i, v := range values {
		out[i] = FormatValue(v)
		var dt pmml.DataType
		switch v.(type) {
		case int:
			dt = pmml.DataTypeInteger
		case float64:
			dt = pmml.DataTypeDouble
		case bool:
			dt = pmml.DataTypeBoolean
		default:
			dt = pmml.DataTypeString
		}
		switch {
		case dataType == "":
			dataType = dt
		case dataType == dt:
		case dataType == pmml.DataTypeInteger && dt == pmml.DataTypeDouble,
			dataType == pmml.DataTypeDouble && dt == pmml.DataTypeInteger:
			dataType = pmml.DataTypeDouble
		default:
			dataType = pmml.DataTypeString
		}
	}
	if dataType == "" {
		dataType = pmml.DataTypeString
	}
	return out, dataType
}
