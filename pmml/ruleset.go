package pmml

import "encoding/xml"

type RuleSetModel struct {
	XMLName xml.Name `xml:"RuleSetModel"`
	ModelBase
	RuleSet *RuleSet
}

func (m *RuleSetModel) Copy() Model {
	c := *m
	return &c
}

type RuleSet struct {
	XMLName              xml.Name               `xml:"RuleSet"`
	DefaultScore         string                 `xml:"defaultScore,attr,omitempty"`
	DefaultConfidence    *float64               `xml:"defaultConfidence,attr,omitempty"`
	RuleSelectionMethods []*RuleSelectionMethod `xml:"RuleSelectionMethod"`
	Rules                []*SimpleRule          `xml:"SimpleRule"`
}

const (
	CriterionFirstHit    = "firstHit"
	CriterionWeightedSum = "weightedSum"
	CriterionWeightedMax = "weightedMax"
)

type RuleSelectionMethod struct {
	Criterion string `xml:"criterion,attr"`
}

type SimpleRule struct {
	XMLName   xml.Name `xml:"SimpleRule"`
	ID        string   `xml:"id,attr,omitempty"`
	Score     string   `xml:"score,attr"`
	Predicate Predicate
}

// Scorecard sums partial scores of the matching attribute of each
// characteristic.
type Scorecard struct {
	XMLName xml.Name `xml:"Scorecard"`
	ModelBase
	InitialScore    float64 `xml:"initialScore,attr"`
	UseReasonCodes  bool    `xml:"useReasonCodes,attr"`
	Characteristics *Characteristics
}

func (m *Scorecard) Copy() Model {
	c := *m
	return &c
}

type Characteristics struct {
	XMLName         xml.Name          `xml:"Characteristics"`
	Characteristics []*Characteristic `xml:"Characteristic"`
}

type Characteristic struct {
	XMLName    xml.Name     `xml:"Characteristic"`
	Name       string       `xml:"name,attr"`
	Attributes []*Attribute `xml:"Attribute"`
}

type Attribute struct {
	XMLName      xml.Name `xml:"Attribute"`
	PartialScore float64  `xml:"partialScore,attr"`
	Predicate    Predicate
}
