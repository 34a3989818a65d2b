// Package tree encodes scikit-learn decision trees as PMML TreeModel
// elements. The node encoding is shared by every tree ensemble.
package tree

import (
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Leaf marks an absent child in ChildrenLeft and ChildrenRight.
const Leaf = -1

// Tree is the flat node table of a fitted sklearn.tree._tree.Tree. Node i
// is a split when Feature[i] >= 0; its children are addressed by index.
type Tree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64

	// Value is the [nodes, outputs, classes] array in row-major order.
	Value   []float64
	Outputs int
	Classes int

	// NodeSamples is n_node_samples; nil when the dump omits it.
	NodeSamples         []int
	WeightedNodeSamples []float64
	// MissingGoToLeft is set by releases that learn missing-value routing.
	MissingGoToLeft []bool
}

// Decode reads the node table of a Tree object.
func Decode(obj *store.Object) (*Tree, error) {
	t := &Tree{}
	var err error
	if t.ChildrenLeft, err = obj.GetIntegerArray("children_left"); err != nil {
		return nil, err
	}
	if t.ChildrenRight, err = obj.GetIntegerArray("children_right"); err != nil {
		return nil, err
	}
	if t.Feature, err = obj.GetIntegerArray("feature"); err != nil {
		return nil, err
	}
	if t.Threshold, err = obj.GetNumberArray("threshold"); err != nil {
		return nil, err
	}

	shape, err := obj.GetArrayShape("value", 3)
	if err != nil {
		return nil, err
	}
	if t.Value, err = obj.GetNumberArray("value"); err != nil {
		return nil, err
	}
	t.Outputs, t.Classes = shape[1], shape[2]

	if obj.GetOptional("n_node_samples") != nil {
		if t.NodeSamples, err = obj.GetIntegerArray("n_node_samples"); err != nil {
			return nil, err
		}
	}
	if t.WeightedNodeSamples, err = obj.GetOptionalNumberArray("weighted_n_node_samples"); err != nil {
		return nil, err
	}
	if obj.GetOptional("missing_go_to_left") != nil {
		flags, err := obj.GetIntegerArray("missing_go_to_left")
		if err != nil {
			return nil, err
		}
		t.MissingGoToLeft = make([]bool, len(flags))
		for i, flag := range flags {
			t.MissingGoToLeft[i] = flag == 1
		}
	}

	if err := t.validate(obj.TypeKey(), shape[0]); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) validate(owner string, n int) error {
	sizes := []struct {
		attr string
		got  int
	}{
		{"children_left", len(t.ChildrenLeft)},
		{"children_right", len(t.ChildrenRight)},
		{"feature", len(t.Feature)},
		{"threshold", len(t.Threshold)},
	}
	for _, s := range sizes {
		if err := errors.CheckSize(owner, s.attr, n, s.got); err != nil {
			return err
		}
	}
	if t.NodeSamples != nil {
		if err := errors.CheckSize(owner, "n_node_samples", n, len(t.NodeSamples)); err != nil {
			return err
		}
	}
	if t.MissingGoToLeft != nil {
		if err := errors.CheckSize(owner, "missing_go_to_left", n, len(t.MissingGoToLeft)); err != nil {
			return err
		}
	}
	if n == 0 {
		return errors.NewInvalidAttributeValueError(owner, "node_count", 0)
	}
	for i := 0; i < n; i++ {
		if t.Feature[i] < 0 {
			continue
		}
		// children always follow their parent in depth-first order
		for _, child := range []int{t.ChildrenLeft[i], t.ChildrenRight[i]} {
			if child <= i || child >= n {
				return errors.NewInvalidAttributeValueError(owner, "children", child)
			}
		}
	}
	return nil
}

// NodeCount returns the number of nodes.
func (t *Tree) NodeCount() int {
	return len(t.Feature)
}

// IsLeaf reports whether node i has no split.
func (t *Tree) IsLeaf(i int) bool {
	return t.Feature[i] < 0
}

// Values returns the per-class values of node i for output 0.
func (t *Tree) Values(i int) []float64 {
	stride := t.Outputs * t.Classes
	return t.Value[i*stride : i*stride+t.Classes]
}

// Scalar returns the value of node i for a single-output regression tree.
func (t *Tree) Scalar(i int) float64 {
	return t.Value[i*t.Outputs*t.Classes]
}
