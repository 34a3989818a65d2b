package lightgbm

import (
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Bits of decision_type.
const (
	categoricalMask = 1 << 0
	defaultLeftMask = 1 << 1
)

// MissingType selects how a split treats missing values, stored in bits 2-3
// of decision_type.
type MissingType int

const (
	MissingNone MissingType = iota
	MissingZero
	MissingNaN
)

// Tree is one tree of a booster dump. Internal nodes are indexed from 0;
// a negative child c refers to leaf ^c.
type Tree struct {
	NumLeaves     int
	SplitFeature  []int
	Threshold     []float64
	DecisionType  []uint32
	LeftChild     []int
	RightChild    []int
	LeafValue     []float64
	LeafCount     []float64
	InternalCount []float64
	CatBoundaries []int
	CatThreshold  []uint32
	Shrinkage     float64
}

func newTree(params treeParams) (*Tree, error) {
	t := &Tree{Shrinkage: 1}
	var err error
	if t.NumLeaves, err = params.toInt("num_leaves"); err != nil {
		return nil, err
	}
	if t.NumLeaves < 1 {
		return nil, errors.NewValueError("Tree", "num_leaves < 1")
	}
	if t.LeafValue, err = params.toFloat64Slice("leaf_value"); err != nil {
		return nil, err
	}
	if err := errors.CheckSize("Tree", "leaf_value", t.NumLeaves, len(t.LeafValue)); err != nil {
		return nil, err
	}
	if t.LeafCount, err = params.toOptionalFloat64Slice("leaf_count"); err != nil {
		return nil, err
	}
	if params.has("shrinkage") {
		shrinkage, err := params.toFloat64Slice("shrinkage")
		if err != nil {
			return nil, err
		}
		if len(shrinkage) == 1 {
			t.Shrinkage = shrinkage[0]
		}
	}
	if v, ok := params["is_linear"]; ok && v != "0" {
		return nil, errors.NewUnsupportedVariantError("Tree", "linear tree")
	}

	// a constant tree has no split arrays
	if t.NumLeaves == 1 {
		return t, nil
	}

	if t.SplitFeature, err = params.toIntSlice("split_feature"); err != nil {
		return nil, err
	}
	if t.Threshold, err = params.toFloat64Slice("threshold"); err != nil {
		return nil, err
	}
	if t.DecisionType, err = params.toUint32Slice("decision_type"); err != nil {
		return nil, err
	}
	if t.LeftChild, err = params.toIntSlice("left_child"); err != nil {
		return nil, err
	}
	if t.RightChild, err = params.toIntSlice("right_child"); err != nil {
		return nil, err
	}
	if t.InternalCount, err = params.toOptionalFloat64Slice("internal_count"); err != nil {
		return nil, err
	}
	numNodes := t.NumLeaves - 1
	for name, n := range map[string]int{
		"split_feature": len(t.SplitFeature),
		"threshold":     len(t.Threshold),
		"decision_type": len(t.DecisionType),
		"left_child":    len(t.LeftChild),
		"right_child":   len(t.RightChild),
	} {
		if err := errors.CheckSize("Tree", name, numNodes, n); err != nil {
			return nil, err
		}
	}

	numCat := 0
	if params.has("num_cat") {
		if numCat, err = params.toInt("num_cat"); err != nil {
			return nil, err
		}
	}
	if numCat > 0 {
		if t.CatBoundaries, err = params.toIntSlice("cat_boundaries"); err != nil {
			return nil, err
		}
		if err := errors.CheckSize("Tree", "cat_boundaries", numCat+1, len(t.CatBoundaries)); err != nil {
			return nil, err
		}
		if t.CatThreshold, err = params.toUint32Slice("cat_threshold"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) IsCategorical(node int) bool {
	return t.DecisionType[node]&categoricalMask != 0
}

func (t *Tree) DefaultLeft(node int) bool {
	return t.DecisionType[node]&defaultLeftMask != 0
}

func (t *Tree) MissingType(node int) MissingType {
	return MissingType((t.DecisionType[node] >> 2) & 3)
}

// Categories returns the category codes that go left at a categorical
// node. The threshold of such a node indexes cat_boundaries, which delimit
// its bitset in cat_threshold.
func (t *Tree) Categories(node int) ([]int, error) {
	index := int(t.Threshold[node])
	if index < 0 || index+1 >= len(t.CatBoundaries) {
		return nil, errors.NewInvalidAttributeValueError("Tree", "threshold", t.Threshold[node], "categorical split index")
	}
	start, end := t.CatBoundaries[index], t.CatBoundaries[index+1]
	if start < 0 || end > len(t.CatThreshold) || start > end {
		return nil, errors.NewSchemaSizeError("Tree", "cat_threshold", end, len(t.CatThreshold))
	}
	return bitsetValues(t.CatThreshold[start:end]), nil
}

// count returns the record count of a node reference (negative for leaves),
// or nil when the dump holds no counts.
func (t *Tree) count(child int) *float64 {
	if child < 0 {
		if leaf := ^child; leaf < len(t.LeafCount) {
			v := t.LeafCount[leaf]
			return &v
		}
		return nil
	}
	if child < len(t.InternalCount) {
		v := t.InternalCount[child]
		return &v
	}
	return nil
}
