package pmml

import (
	"encoding/xml"
	"strings"
)

// Expression is any PMML transformation expression.
type Expression interface {
	isExpression()
}

type FieldRef struct {
	XMLName      xml.Name `xml:"FieldRef"`
	Field        string   `xml:"field,attr"`
	MapMissingTo string   `xml:"mapMissingTo,attr,omitempty"`
}

func NewFieldRef(field string) *FieldRef {
	return &FieldRef{Field: field}
}

type Constant struct {
	XMLName  xml.Name `xml:"Constant"`
	DataType DataType `xml:"dataType,attr,omitempty"`
	Value    string   `xml:",chardata"`
}

// NewConstant creates a double constant.
func NewConstant(v float64) *Constant {
	return &Constant{DataType: DataTypeDouble, Value: FormatNumber(v)}
}

// NewStringConstant creates a string constant.
func NewStringConstant(v string) *Constant {
	return &Constant{DataType: DataTypeString, Value: v}
}

type Apply struct {
	XMLName      xml.Name `xml:"Apply"`
	Function     string   `xml:"function,attr"`
	MapMissingTo string   `xml:"mapMissingTo,attr,omitempty"`
	DefaultValue string   `xml:"defaultValue,attr,omitempty"`
	Expressions  []Expression
}

func NewApply(function string, expressions ...Expression) *Apply {
	return &Apply{Function: function, Expressions: expressions}
}

// NormContinuous is a piecewise-linear map over LinearNorm knots.
type NormContinuous struct {
	XMLName      xml.Name      `xml:"NormContinuous"`
	Field        string        `xml:"field,attr"`
	MapMissingTo *float64      `xml:"mapMissingTo,attr,omitempty"`
	Outliers     string        `xml:"outliers,attr,omitempty"`
	LinearNorms  []*LinearNorm `xml:"LinearNorm"`
}

type LinearNorm struct {
	Orig float64 `xml:"orig,attr"`
	Norm float64 `xml:"norm,attr"`
}

// NormDiscrete is 1 when the field equals Value and 0 otherwise.
type NormDiscrete struct {
	XMLName xml.Name `xml:"NormDiscrete"`
	Field   string   `xml:"field,attr"`
	Value   string   `xml:"value,attr"`
}

// Outlier treatments of NormContinuous.
const (
	OutliersAsIs           = "asIs"
	OutliersAsMissing      = "asMissingValues"
	OutliersAsExtremeValue = "asExtremeValues"
)

// Discretize maps a continuous field to the value of the interval bin it
// falls into.
type Discretize struct {
	XMLName      xml.Name         `xml:"Discretize"`
	Field        string           `xml:"field,attr"`
	MapMissingTo string           `xml:"mapMissingTo,attr,omitempty"`
	DefaultValue string           `xml:"defaultValue,attr,omitempty"`
	DataType     DataType         `xml:"dataType,attr,omitempty"`
	Bins         []*DiscretizeBin `xml:"DiscretizeBin"`
}

type DiscretizeBin struct {
	BinValue string `xml:"binValue,attr"`
	Interval *Interval
}

const (
	ClosureClosedOpen = "closedOpen"
	ClosureOpenClosed = "openClosed"
)

type Interval struct {
	XMLName     xml.Name `xml:"Interval"`
	Closure     string   `xml:"closure,attr"`
	LeftMargin  *float64 `xml:"leftMargin,attr,omitempty"`
	RightMargin *float64 `xml:"rightMargin,attr,omitempty"`
}

// MapValues looks the field value up in a two-column inline table.
type MapValues struct {
	XMLName          xml.Name           `xml:"MapValues"`
	OutputColumn     string             `xml:"outputColumn,attr"`
	MapMissingTo     string             `xml:"mapMissingTo,attr,omitempty"`
	DefaultValue     string             `xml:"defaultValue,attr,omitempty"`
	DataType         DataType           `xml:"dataType,attr,omitempty"`
	FieldColumnPairs []*FieldColumnPair `xml:"FieldColumnPair"`
	InlineTable      *InlineTable
}

type FieldColumnPair struct {
	Field  string `xml:"field,attr"`
	Column string `xml:"column,attr"`
}

type InlineTable struct {
	XMLName xml.Name `xml:"InlineTable"`
	Rows    []*Row   `xml:"row"`
}

// Row holds one cell per column; the element name of a cell is its column.
type Row struct {
	Cells []*Cell
}

type Cell struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// NewMapValues maps field through inputs[i] -> outputs[i].
func NewMapValues(field string, inputs, outputs []string) *MapValues {
	table := &InlineTable{}
	for i := range inputs {
		table.Rows = append(table.Rows, &Row{Cells: []*Cell{
			{XMLName: xml.Name{Local: "input"}, Value: inputs[i]},
			{XMLName: xml.Name{Local: "output"}, Value: outputs[i]},
		}})
	}
	return &MapValues{
		OutputColumn:     "output",
		FieldColumnPairs: []*FieldColumnPair{{Field: field, Column: "input"}},
		InlineTable:      table,
	}
}

func (*FieldRef) isExpression()       {}
func (*Constant) isExpression()       {}
func (*Apply) isExpression()          {}
func (*NormContinuous) isExpression() {}
func (*NormDiscrete) isExpression()   {}
func (*Discretize) isExpression()     {}
func (*MapValues) isExpression()      {}

// Array is a PMML space separated value list.
type Array struct {
	XMLName xml.Name `xml:"Array"`
	Type    string   `xml:"type,attr"`
	N       int      `xml:"n,attr"`
	Value   string   `xml:",chardata"`
}

// NewStringArray quotes values that contain whitespace or quotes.
func NewStringArray(values []string) *Array {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == "" || strings.ContainsAny(v, " \t\n\"") {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		parts[i] = v
	}
	return &Array{Type: "string", N: len(values), Value: strings.Join(parts, " ")}
}

// NewRealArray formats numbers with FormatNumber.
func NewRealArray(values []float64) *Array {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatNumber(v)
	}
	return &Array{Type: "real", N: len(values), Value: strings.Join(parts, " ")}
}
