package pmml

import "encoding/xml"

// Predicate decides whether a tree node, rule or scorecard attribute applies.
type Predicate interface {
	isPredicate()
}

type True struct {
	XMLName xml.Name `xml:"True"`
}

type False struct {
	XMLName xml.Name `xml:"False"`
}

type Operator string

const (
	OpEqual          Operator = "equal"
	OpNotEqual       Operator = "notEqual"
	OpLessThan       Operator = "lessThan"
	OpLessOrEqual    Operator = "lessOrEqual"
	OpGreaterThan    Operator = "greaterThan"
	OpGreaterOrEqual Operator = "greaterOrEqual"
	OpIsMissing      Operator = "isMissing"
	OpIsNotMissing   Operator = "isNotMissing"
)

type SimplePredicate struct {
	XMLName  xml.Name `xml:"SimplePredicate"`
	Field    string   `xml:"field,attr"`
	Operator Operator `xml:"operator,attr"`
	Value    string   `xml:"value,attr,omitempty"`
}

type SetOperator string

const (
	SetIsIn    SetOperator = "isIn"
	SetIsNotIn SetOperator = "isNotIn"
)

type SimpleSetPredicate struct {
	XMLName         xml.Name    `xml:"SimpleSetPredicate"`
	Field           string      `xml:"field,attr"`
	BooleanOperator SetOperator `xml:"booleanOperator,attr"`
	Array           *Array
}

type BooleanOperator string

const (
	BoolAnd       BooleanOperator = "and"
	BoolOr        BooleanOperator = "or"
	BoolXor       BooleanOperator = "xor"
	BoolSurrogate BooleanOperator = "surrogate"
)

type CompoundPredicate struct {
	XMLName         xml.Name        `xml:"CompoundPredicate"`
	BooleanOperator BooleanOperator `xml:"booleanOperator,attr"`
	Predicates      []Predicate
}

func (*True) isPredicate()               {}
func (*False) isPredicate()              {}
func (*SimplePredicate) isPredicate()    {}
func (*SimpleSetPredicate) isPredicate() {}
func (*CompoundPredicate) isPredicate()  {}
