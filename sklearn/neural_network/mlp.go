// Package neural_network encodes scikit-learn multi-layer perceptrons as
// PMML NeuralNetwork elements.
package neural_network

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const module = "sklearn.neural_network"

// Register adds the perceptron estimators to r.
func Register(r *model.Registry) {
	r.Register(module, "MLPClassifier", NewMLPClassifier)
	r.Register(module, "MLPRegressor", NewMLPRegressor)
}

// MLPClassifier encodes a fitted perceptron classifier. Two classes share a
// single logistic output neuron, more classes get a softmax output layer.
type MLPClassifier struct {
	model.ClassifierBase
}

func NewMLPClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &MLPClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *MLPClassifier) NumberOfFeatures() int {
	if n := inputSize(c.Object()); n >= 0 {
		return n
	}
	return c.Base.NumberOfFeatures()
}

func (c *MLPClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	if label.Name() == "" {
		return nil, errors.NewValueError(c.TypeKey(), "neural outputs need a named target field")
	}
	obj := c.Object()
	out, err := obj.GetEnum("out_activation_", "logistic", "softmax")
	if err != nil {
		return nil, err
	}
	nn, last, err := encodeNetwork(obj, pmml.MiningFunctionClassification, s)
	if err != nil {
		return nil, err
	}
	outputLayer := nn.NeuralLayers[len(nn.NeuralLayers)-1]

	var neurons []string
	switch {
	case out == "logistic" && label.Size() == 2:
		if err := errors.CheckSize(c.TypeKey(), "output neurons", 1, len(last)); err != nil {
			return nil, err
		}
		outputLayer.ActivationFunction = pmml.ActivationLogistic
		layer := binaryLayer(len(nn.NeuralLayers)+1, last[0])
		nn.NeuralLayers = append(nn.NeuralLayers, layer)
		neurons = []string{layer.Neurons[0].ID, layer.Neurons[1].ID}
	case out == "softmax":
		if err := errors.CheckSize(c.TypeKey(), "output neurons", label.Size(), len(last)); err != nil {
			return nil, err
		}
		outputLayer.ActivationFunction = pmml.ActivationIdentity
		outputLayer.NormalizationMethod = pmml.NormalizationSoftmax
		neurons = last
	default:
		// a logistic output over more than two columns is a multi-label fit
		return nil, errors.NewUnsupportedVariantError(c.TypeKey(), "multi-label output")
	}

	nn.NeuralOutputs = &pmml.NeuralOutputs{NumberOfOutputs: len(neurons)}
	for i, id := range neurons {
		nn.NeuralOutputs.Outputs = append(nn.NeuralOutputs.Outputs, &pmml.NeuralOutput{
			OutputNeuron: id,
			DerivedField: &pmml.DerivedField{
				OpType:     pmml.OpTypeCategorical,
				DataType:   label.DataType(),
				Expression: &pmml.NormDiscrete{Field: label.Name(), Value: label.Value(i)},
			},
		})
	}
	modelgraph.AddOutputFields(nn, modelgraph.ProbabilityFields(label)...)
	return nn, nil
}

// MLPRegressor encodes a fitted perceptron regressor with identity output
// neurons, one per target.
type MLPRegressor struct {
	model.RegressorBase
}

func NewMLPRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &MLPRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *MLPRegressor) NumberOfFeatures() int {
	if n := inputSize(r.Object()); n >= 0 {
		return n
	}
	return r.Base.NumberOfFeatures()
}

// NumberOfOutputs は n_outputs_ を返す
func (r *MLPRegressor) NumberOfOutputs() int {
	if n, err := r.Object().GetInteger("n_outputs_"); err == nil {
		return n
	}
	return 1
}

func (r *MLPRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	obj := r.Object()
	if _, err := obj.GetEnum("out_activation_", "identity"); err != nil {
		return nil, err
	}
	var labels []schema.Label
	switch l := s.Label().(type) {
	case *schema.MultiLabel:
		labels = l.Labels()
	default:
		labels = []schema.Label{l}
	}
	for _, l := range labels {
		if l.Name() == "" {
			return nil, errors.NewValueError(r.TypeKey(), "neural outputs need a named target field")
		}
	}

	nn, last, err := encodeNetwork(obj, pmml.MiningFunctionRegression, s)
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(r.TypeKey(), "output neurons", len(labels), len(last)); err != nil {
		return nil, err
	}
	nn.NeuralLayers[len(nn.NeuralLayers)-1].ActivationFunction = pmml.ActivationIdentity

	nn.NeuralOutputs = &pmml.NeuralOutputs{NumberOfOutputs: len(last)}
	for i, id := range last {
		nn.NeuralOutputs.Outputs = append(nn.NeuralOutputs.Outputs, &pmml.NeuralOutput{
			OutputNeuron: id,
			DerivedField: &pmml.DerivedField{
				OpType:     pmml.OpTypeContinuous,
				DataType:   pmml.DataTypeDouble,
				Expression: pmml.NewFieldRef(labels[i].Name()),
			},
		})
	}
	return nn, nil
}

// activations maps the hidden activation names to PMML functions.
var activations = map[string]pmml.ActivationFunction{
	"identity": pmml.ActivationIdentity,
	"logistic": pmml.ActivationLogistic,
	"tanh":     pmml.ActivationTanh,
	"relu":     pmml.ActivationRectifier,
}

// encodeNetwork builds the inputs and the dense layers from coefs_ and
// intercepts_. It returns the neuron ids of the last layer.
func encodeNetwork(obj *store.Object, fn pmml.MiningFunction, s *schema.Schema) (*pmml.NeuralNetwork, []string, error) {
	name, err := obj.GetEnum("activation", "identity", "logistic", "tanh", "relu")
	if err != nil {
		return nil, nil, err
	}
	coefs, err := weightMatrices(obj)
	if err != nil {
		return nil, nil, err
	}
	intercepts, err := biasVectors(obj)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.CheckSize(obj.TypeKey(), "intercepts_", len(coefs), len(intercepts)); err != nil {
		return nil, nil, err
	}

	enc := s.Encoder()
	inputs := &pmml.NeuralInputs{NumberOfInputs: s.NumberOfFeatures()}
	previous := make([]string, s.NumberOfFeatures())
	for i, f := range s.Features() {
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, nil, err
		}
		previous[i] = "input/" + strconv.Itoa(i+1)
		inputs.Inputs = append(inputs.Inputs, &pmml.NeuralInput{
			ID: previous[i],
			DerivedField: &pmml.DerivedField{
				OpType:     pmml.OpTypeContinuous,
				DataType:   pmml.DataTypeDouble,
				Expression: pmml.NewFieldRef(cf.Name()),
			},
		})
	}

	nn := &pmml.NeuralNetwork{
		ModelBase:          modelgraph.NewModelBase(fn, s.Label()),
		ActivationFunction: activations[name],
		NeuralInputs:       inputs,
	}
	for l, w := range coefs {
		rows, cols := w.Dims()
		if err := errors.CheckSize(obj.TypeKey(), fmt.Sprintf("coefs_[%d] rows", l), len(previous), rows); err != nil {
			return nil, nil, err
		}
		if err := errors.CheckSize(obj.TypeKey(), fmt.Sprintf("intercepts_[%d]", l), cols, len(intercepts[l])); err != nil {
			return nil, nil, err
		}
		layer := &pmml.NeuralLayer{NumberOfNeurons: cols}
		current := make([]string, cols)
		for j := 0; j < cols; j++ {
			current[j] = strconv.Itoa(l+1) + "/" + strconv.Itoa(j+1)
			neuron := &pmml.Neuron{ID: current[j], Bias: intercepts[l][j]}
			for i, from := range previous {
				neuron.Cons = append(neuron.Cons, &pmml.Con{From: from, Weight: w.At(i, j)})
			}
			layer.Neurons = append(layer.Neurons, neuron)
		}
		nn.NeuralLayers = append(nn.NeuralLayers, layer)
		previous = current
	}
	return nn, previous, nil
}

// binaryLayer expands the single logistic neuron p into (1 - p, p).
func binaryLayer(index int, from string) *pmml.NeuralLayer {
	prefix := strconv.Itoa(index) + "/"
	return &pmml.NeuralLayer{
		NumberOfNeurons:    2,
		ActivationFunction: pmml.ActivationIdentity,
		Neurons: []*pmml.Neuron{
			{ID: prefix + "1", Bias: 1, Cons: []*pmml.Con{{From: from, Weight: -1}}},
			{ID: prefix + "2", Bias: 0, Cons: []*pmml.Con{{From: from, Weight: 1}}},
		},
	}
}

func weightMatrices(obj *store.Object) ([]*mat.Dense, error) {
	arrays, err := arrayList(obj, "coefs_", 2)
	if err != nil {
		return nil, err
	}
	out := make([]*mat.Dense, len(arrays))
	for i, a := range arrays {
		data, err := a.Numbers()
		if err != nil {
			return nil, errors.NewAttributeTypeError(obj.TypeKey(), "coefs_", "numeric ndarray", fmt.Sprintf("%T", a.Data))
		}
		out[i] = mat.NewDense(a.Shape[0], a.Shape[1], data)
	}
	return out, nil
}

func biasVectors(obj *store.Object) ([][]float64, error) {
	arrays, err := arrayList(obj, "intercepts_", 1)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(arrays))
	for i, a := range arrays {
		if out[i], err = a.Numbers(); err != nil {
			return nil, errors.NewAttributeTypeError(obj.TypeKey(), "intercepts_", "numeric ndarray", fmt.Sprintf("%T", a.Data))
		}
	}
	return out, nil
}

func arrayList(obj *store.Object, name string, rank int) ([]*store.Array, error) {
	values, err := obj.GetList(name)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewInvalidAttributeValueError(obj.TypeKey(), name, "[]", "non-empty list")
	}
	out := make([]*store.Array, len(values))
	for i, v := range values {
		a, ok := v.(*store.Array)
		if !ok || a.Rank() != rank {
			return nil, errors.NewAttributeTypeError(obj.TypeKey(), name, fmt.Sprintf("list of rank-%d ndarrays", rank), fmt.Sprintf("%T", v))
		}
		out[i] = a
	}
	return out, nil
}

// inputSize reads the row count of the first weight matrix, or -1.
func inputSize(obj *store.Object) int {
	arrays, err := arrayList(obj, "coefs_", 2)
	if err != nil {
		return -1
	}
	return arrays[0].Shape[0]
}
