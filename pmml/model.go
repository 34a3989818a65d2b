package pmml

import "encoding/xml"

// Model is any PMML model element.
type Model interface {
	// Base gives access to the elements all models share.
	Base() *ModelBase
	// Copy returns a shallow copy; nested elements are shared.
	Copy() Model
}

// ModelBase holds the attributes and leading child elements common to all
// model elements. It is embedded first so its elements precede the
// model-specific content.
type ModelBase struct {
	ModelName            string         `xml:"modelName,attr,omitempty"`
	FunctionName         MiningFunction `xml:"functionName,attr"`
	AlgorithmName        string         `xml:"algorithmName,attr,omitempty"`
	MiningSchema         *MiningSchema
	Output               *Output
	Targets              *Targets
	LocalTransformations *LocalTransformations
}

func (b *ModelBase) Base() *ModelBase {
	return b
}

type UsageType string

const (
	UsageActive        UsageType = "active"
	UsageTarget        UsageType = "target"
	UsageSupplementary UsageType = "supplementary"
)

type MiningSchema struct {
	XMLName      xml.Name       `xml:"MiningSchema"`
	MiningFields []*MiningField `xml:"MiningField"`
}

type MiningField struct {
	XMLName    xml.Name  `xml:"MiningField"`
	Name       string    `xml:"name,attr"`
	UsageType  UsageType `xml:"usageType,attr,omitempty"`
	OpType     OpType    `xml:"optype,attr,omitempty"`
	Importance *float64  `xml:"importance,attr,omitempty"`
}

// Field returns the mining field with the given name, or nil.
func (s *MiningSchema) Field(name string) *MiningField {
	if s == nil {
		return nil
	}
	for _, f := range s.MiningFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type Output struct {
	XMLName      xml.Name       `xml:"Output"`
	OutputFields []*OutputField `xml:"OutputField"`
}

// Copy returns an Output with its own field slice.
func (o *Output) Copy() *Output {
	if o == nil {
		return &Output{}
	}
	return &Output{OutputFields: append([]*OutputField(nil), o.OutputFields...)}
}

type OutputField struct {
	XMLName       xml.Name      `xml:"OutputField"`
	Name          string        `xml:"name,attr"`
	OpType        OpType        `xml:"optype,attr,omitempty"`
	DataType      DataType      `xml:"dataType,attr"`
	TargetField   string        `xml:"targetField,attr,omitempty"`
	Feature       ResultFeature `xml:"feature,attr,omitempty"`
	Value         string        `xml:"value,attr,omitempty"`
	IsFinalResult *bool         `xml:"isFinalResult,attr,omitempty"`
	Expression    Expression
}

type Targets struct {
	XMLName xml.Name  `xml:"Targets"`
	Targets []*Target `xml:"Target"`
}

type Target struct {
	XMLName         xml.Name `xml:"Target"`
	Field           string   `xml:"field,attr,omitempty"`
	RescaleFactor   *float64 `xml:"rescaleFactor,attr,omitempty"`
	RescaleConstant *float64 `xml:"rescaleConstant,attr,omitempty"`
}

// RegressionModel is a set of linear tables, one per target category for
// classification.
type RegressionModel struct {
	XMLName xml.Name `xml:"RegressionModel"`
	ModelBase
	NormalizationMethod NormalizationMethod `xml:"normalizationMethod,attr,omitempty"`
	RegressionTables    []*RegressionTable  `xml:"RegressionTable"`
}

func (m *RegressionModel) Copy() Model {
	c := *m
	return &c
}

type RegressionTable struct {
	Intercept             float64                 `xml:"intercept,attr"`
	TargetCategory        string                  `xml:"targetCategory,attr,omitempty"`
	NumericPredictors     []*NumericPredictor     `xml:"NumericPredictor"`
	CategoricalPredictors []*CategoricalPredictor `xml:"CategoricalPredictor"`
}

type NumericPredictor struct {
	Name        string  `xml:"name,attr"`
	Exponent    int     `xml:"exponent,attr,omitempty"`
	Coefficient float64 `xml:"coefficient,attr"`
}

type CategoricalPredictor struct {
	Name        string  `xml:"name,attr"`
	Value       string  `xml:"value,attr"`
	Coefficient float64 `xml:"coefficient,attr"`
}

// MiningModel combines nested models through a Segmentation.
type MiningModel struct {
	XMLName xml.Name `xml:"MiningModel"`
	ModelBase
	Segmentation *Segmentation
}

func (m *MiningModel) Copy() Model {
	c := *m
	return &c
}

type Segmentation struct {
	XMLName                    xml.Name                   `xml:"Segmentation"`
	MultipleModelMethod        MultipleModelMethod        `xml:"multipleModelMethod,attr"`
	MissingPredictionTreatment MissingPredictionTreatment `xml:"missingPredictionTreatment,attr,omitempty"`
	Segments                   []*Segment                 `xml:"Segment"`
}

type Segment struct {
	XMLName   xml.Name `xml:"Segment"`
	ID        string   `xml:"id,attr,omitempty"`
	Weight    *float64 `xml:"weight,attr,omitempty"`
	Predicate Predicate
	Model     Model
}
