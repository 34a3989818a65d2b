// Package pmml is the PMML 4.4 document object model produced by the
// converter, together with its XML marshalling.
//
// Only the subset of elements the encoders emit is modelled. Interface-typed
// fields (Expression, Predicate, Model) carry no struct tag: the element name
// comes from the XMLName of the concrete value.
package pmml

import (
	"encoding/xml"
	"io"
	"strconv"
)

const (
	Namespace = "http://www.dmg.org/PMML-4_4"
	Version   = "4.4"
)

type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeInteger DataType = "integer"
	DataTypeFloat   DataType = "float"
	DataTypeDouble  DataType = "double"
	DataTypeBoolean DataType = "boolean"
)

type OpType string

const (
	OpTypeCategorical OpType = "categorical"
	OpTypeOrdinal     OpType = "ordinal"
	OpTypeContinuous  OpType = "continuous"
)

type MiningFunction string

const (
	MiningFunctionRegression     MiningFunction = "regression"
	MiningFunctionClassification MiningFunction = "classification"
	MiningFunctionClustering     MiningFunction = "clustering"
	MiningFunctionMixed          MiningFunction = "mixed"
)

type NormalizationMethod string

const (
	NormalizationNone      NormalizationMethod = "none"
	NormalizationSimpleMax NormalizationMethod = "simplemax"
	NormalizationSoftmax   NormalizationMethod = "softmax"
	NormalizationLogit     NormalizationMethod = "logit"
	NormalizationProbit    NormalizationMethod = "probit"
	NormalizationCloglog   NormalizationMethod = "cloglog"
	NormalizationExp       NormalizationMethod = "exp"
)

type MultipleModelMethod string

const (
	MethodMajorityVote         MultipleModelMethod = "majorityVote"
	MethodWeightedMajorityVote MultipleModelMethod = "weightedMajorityVote"
	MethodAverage              MultipleModelMethod = "average"
	MethodWeightedAverage      MultipleModelMethod = "weightedAverage"
	MethodSum                  MultipleModelMethod = "sum"
	MethodModelChain           MultipleModelMethod = "modelChain"
	MethodSelectFirst          MultipleModelMethod = "selectFirst"
)

type MissingPredictionTreatment string

const (
	MissingPredictionReturnMissing MissingPredictionTreatment = "returnMissing"
	MissingPredictionSkipSegment   MissingPredictionTreatment = "skipSegment"
	MissingPredictionContinue      MissingPredictionTreatment = "continue"
)

type ResultFeature string

const (
	ResultPredictedValue   ResultFeature = "predictedValue"
	ResultProbability      ResultFeature = "probability"
	ResultTransformedValue ResultFeature = "transformedValue"
	ResultEntityID         ResultFeature = "entityId"
	ResultAffinity         ResultFeature = "affinity"
)

// PMML is the document root.
type PMML struct {
	XMLName                  xml.Name `xml:"http://www.dmg.org/PMML-4_4 PMML"`
	Version                  string   `xml:"version,attr"`
	Header                   *Header
	DataDictionary           *DataDictionary
	TransformationDictionary *TransformationDictionary
	Models                   []Model
}

// NewPMML creates a document with the given header and dictionary.
func NewPMML(header *Header, dict *DataDictionary) *PMML {
	return &PMML{Version: Version, Header: header, DataDictionary: dict}
}

type Header struct {
	XMLName     xml.Name     `xml:"Header"`
	Copyright   string       `xml:"copyright,attr,omitempty"`
	Description string       `xml:"description,attr,omitempty"`
	Application *Application `xml:"Application"`
	Timestamp   string       `xml:"Timestamp,omitempty"`
}

type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

type DataDictionary struct {
	XMLName        xml.Name     `xml:"DataDictionary"`
	NumberOfFields int          `xml:"numberOfFields,attr"`
	DataFields     []*DataField `xml:"DataField"`
}

type DataField struct {
	XMLName  xml.Name `xml:"DataField"`
	Name     string   `xml:"name,attr"`
	OpType   OpType   `xml:"optype,attr"`
	DataType DataType `xml:"dataType,attr"`
	Values   []*Value `xml:"Value"`
}

type Value struct {
	Value    string `xml:"value,attr"`
	Property string `xml:"property,attr,omitempty"`
}

type TransformationDictionary struct {
	XMLName         xml.Name          `xml:"TransformationDictionary"`
	DefineFunctions []*DefineFunction `xml:"DefineFunction"`
	DerivedFields   []*DerivedField   `xml:"DerivedField"`
}

type LocalTransformations struct {
	XMLName       xml.Name        `xml:"LocalTransformations"`
	DerivedFields []*DerivedField `xml:"DerivedField"`
}

type DerivedField struct {
	XMLName    xml.Name `xml:"DerivedField"`
	Name       string   `xml:"name,attr"`
	OpType     OpType   `xml:"optype,attr"`
	DataType   DataType `xml:"dataType,attr"`
	Expression Expression
}

type DefineFunction struct {
	XMLName         xml.Name          `xml:"DefineFunction"`
	Name            string            `xml:"name,attr"`
	OpType          OpType            `xml:"optype,attr"`
	DataType        DataType          `xml:"dataType,attr,omitempty"`
	ParameterFields []*ParameterField `xml:"ParameterField"`
	Expression      Expression
}

type ParameterField struct {
	Name     string   `xml:"name,attr"`
	OpType   OpType   `xml:"optype,attr,omitempty"`
	DataType DataType `xml:"dataType,attr,omitempty"`
}

// Marshal writes doc as indented XML.
func Marshal(w io.Writer, doc *PMML) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// FormatNumber renders a number the way PMML attribute values are written.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Float returns a pointer to v, for optional numeric attributes.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for optional boolean attributes.
func Bool(v bool) *bool {
	return &v
}
