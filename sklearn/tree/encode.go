package tree

import (
	"math"
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Scorer computes the score of a regression node from its index and depth
// (the root has depth 0).
type Scorer func(t *Tree, index, depth int) (float64, error)

// Options control how a node table becomes a TreeModel.
type Options struct {
	// MissingGoToLeft turns the learned missing-value routing into default
	// children.
	MissingGoToLeft bool
	// Scorer replaces the node value of regression nodes.
	Scorer Scorer
}

// Encode builds a binary-split TreeModel over the features of s. Split
// feature indices address s.Features().
func Encode(t *Tree, fn pmml.MiningFunction, s *schema.Schema, opts Options) (*pmml.TreeModel, error) {
	e := &nodeEncoder{tree: t, fn: fn, schema: s, enc: s.Encoder(), opts: opts}
	if opts.MissingGoToLeft && t.MissingGoToLeft == nil {
		e.opts.MissingGoToLeft = false
	}
	if fn == pmml.MiningFunctionClassification {
		label, err := s.CategoricalLabel()
		if err != nil {
			return nil, err
		}
		if err := errors.CheckSize("tree.Encode", "classes", label.Size(), t.Classes); err != nil {
			return nil, err
		}
		e.label = label
	}

	root, err := e.node(0, &pmml.True{}, 0)
	if err != nil {
		return nil, err
	}
	m := &pmml.TreeModel{
		ModelBase:           modelgraph.NewModelBase(fn, s.Label()),
		SplitCharacteristic: "binarySplit",
		Node:                root,
	}
	if e.opts.MissingGoToLeft {
		m.MissingValueStrategy = pmml.MissingValueStrategyDefaultChild
	}
	return m, nil
}

type nodeEncoder struct {
	tree   *Tree
	fn     pmml.MiningFunction
	schema *schema.Schema
	enc    *schema.Encoder
	opts   Options
	label  *schema.CategoricalLabel
}

func (e *nodeEncoder) node(index int, predicate pmml.Predicate, depth int) (*pmml.Node, error) {
	t := e.tree
	n := &pmml.Node{ID: strconv.Itoa(index), Predicate: e.enc.InternPredicate(predicate)}

	if t.IsLeaf(index) {
		return n, e.leaf(n, index, depth)
	}

	featureIndex := t.Feature[index]
	if featureIndex >= e.schema.NumberOfFeatures() {
		return nil, errors.NewSchemaSizeError("tree.Encode", "features", featureIndex+1, e.schema.NumberOfFeatures())
	}
	left, right, defaultLeft, err := e.split(e.schema.Feature(featureIndex), t.Threshold[index])
	if err != nil {
		return nil, err
	}

	leftChild, err := e.node(t.ChildrenLeft[index], left, depth+1)
	if err != nil {
		return nil, err
	}
	rightChild, err := e.node(t.ChildrenRight[index], right, depth+1)
	if err != nil {
		return nil, err
	}
	n.Nodes = []*pmml.Node{leftChild, rightChild}

	if e.fn == pmml.MiningFunctionRegression {
		if err := e.score(n, index, depth); err != nil {
			return nil, err
		}
	}
	if e.opts.MissingGoToLeft {
		if defaultLeft || t.MissingGoToLeft[index] {
			n.DefaultChild = leftChild.ID
		} else {
			n.DefaultChild = rightChild.ID
		}
	}
	return n, nil
}

// split returns the predicates of the left and right child. Binary
// features always send missing values left.
func (e *nodeEncoder) split(f schema.Feature, threshold float64) (left, right pmml.Predicate, defaultLeft bool, err error) {
	if bf, ok := f.(*schema.BinaryFeature); ok {
		if threshold < 0 || threshold > 1 {
			return nil, nil, false, errors.NewInvalidAttributeValueError(bf.Name(), "threshold", threshold)
		}
		left = &pmml.SimplePredicate{Field: bf.Name(), Operator: pmml.OpNotEqual, Value: bf.Value()}
		right = &pmml.SimplePredicate{Field: bf.Name(), Operator: pmml.OpEqual, Value: bf.Value()}
		return left, right, true, nil
	}

	cf, err := schema.ToContinuousFeature(f, e.enc)
	if err != nil {
		return nil, nil, false, err
	}
	value := pmml.FormatNumber(threshold)
	if math.IsInf(threshold, 1) {
		value = "INF"
	}
	left = &pmml.SimplePredicate{Field: cf.Name(), Operator: pmml.OpLessOrEqual, Value: value}
	right = &pmml.SimplePredicate{Field: cf.Name(), Operator: pmml.OpGreaterThan, Value: value}
	return left, right, false, nil
}

func (e *nodeEncoder) leaf(n *pmml.Node, index, depth int) error {
	t := e.tree
	if e.fn == pmml.MiningFunctionRegression {
		return e.score(n, index, depth)
	}

	values := t.Values(index)
	total, best := 0.0, 0
	for i, v := range values {
		total += v
		if v > values[best] {
			best = i
		}
	}
	n.Score = e.label.Value(best)
	n.RecordCount = pmml.Float(total)
	n.ScoreDistributions = make([]*pmml.ScoreDistribution, len(values))
	for i, v := range values {
		n.ScoreDistributions[i] = e.enc.InternScoreDistribution(e.label.Value(i), v, nil)
	}
	return nil
}

func (e *nodeEncoder) score(n *pmml.Node, index, depth int) error {
	score := e.tree.Scalar(index)
	if e.opts.Scorer != nil {
		var err error
		if score, err = e.opts.Scorer(e.tree, index, depth); err != nil {
			return err
		}
	}
	n.Score = pmml.FormatNumber(score)
	return nil
}
