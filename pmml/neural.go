package pmml

import "encoding/xml"

type ActivationFunction string

const (
	ActivationIdentity  ActivationFunction = "identity"
	ActivationLogistic  ActivationFunction = "logistic"
	ActivationTanh      ActivationFunction = "tanh"
	ActivationRectifier ActivationFunction = "rectifier"
)

type NeuralNetwork struct {
	XMLName xml.Name `xml:"NeuralNetwork"`
	ModelBase
	ActivationFunction  ActivationFunction  `xml:"activationFunction,attr"`
	NormalizationMethod NormalizationMethod `xml:"normalizationMethod,attr,omitempty"`
	NeuralInputs        *NeuralInputs
	NeuralLayers        []*NeuralLayer `xml:"NeuralLayer"`
	NeuralOutputs       *NeuralOutputs
}

func (m *NeuralNetwork) Copy() Model {
	c := *m
	return &c
}

type NeuralInputs struct {
	XMLName        xml.Name       `xml:"NeuralInputs"`
	NumberOfInputs int            `xml:"numberOfInputs,attr"`
	Inputs         []*NeuralInput `xml:"NeuralInput"`
}

type NeuralInput struct {
	XMLName      xml.Name `xml:"NeuralInput"`
	ID           string   `xml:"id,attr"`
	DerivedField *DerivedField
}

type NeuralLayer struct {
	XMLName             xml.Name            `xml:"NeuralLayer"`
	NumberOfNeurons     int                 `xml:"numberOfNeurons,attr"`
	ActivationFunction  ActivationFunction  `xml:"activationFunction,attr,omitempty"`
	NormalizationMethod NormalizationMethod `xml:"normalizationMethod,attr,omitempty"`
	Neurons             []*Neuron           `xml:"Neuron"`
}

type Neuron struct {
	XMLName xml.Name `xml:"Neuron"`
	ID      string   `xml:"id,attr"`
	Bias    float64  `xml:"bias,attr"`
	Cons    []*Con   `xml:"Con"`
}

type Con struct {
	From   string  `xml:"from,attr"`
	Weight float64 `xml:"weight,attr"`
}

type NeuralOutputs struct {
	XMLName         xml.Name        `xml:"NeuralOutputs"`
	NumberOfOutputs int             `xml:"numberOfOutputs,attr"`
	Outputs         []*NeuralOutput `xml:"NeuralOutput"`
}

type NeuralOutput struct {
	XMLName      xml.Name `xml:"NeuralOutput"`
	OutputNeuron string   `xml:"outputNeuron,attr"`
	DerivedField *DerivedField
}
