// Package chaid encodes CHAID decision trees as multiway-split TreeModels.
//
// The fitted tree is a treelib.Tree whose "nodes" dict maps node
// identifiers to treelib.Node objects. Each node carries a CHAID tag with
// the training targets that reached it (dep_v.arr), their row indices, and
// the split that produced its successors: the split column, the category
// codes sent to each successor (-1 for missing) and the matching category
// values (null for missing).
package chaid

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

type Classifier struct {
	model.ClassifierBase
}

func NewClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Classifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *Classifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	m, err := encodeTree(c.Object(), pmml.MiningFunctionClassification, s)
	if err != nil {
		return nil, err
	}
	modelgraph.AddOutputFields(m, modelgraph.ProbabilityFields(label)...)
	return m, nil
}

type Regressor struct {
	model.RegressorBase
}

func NewRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Regressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *Regressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	return encodeTree(r.Object(), pmml.MiningFunctionRegression, s)
}

func Register(r *model.Registry) {
	r.Register("sklearn2pmml.tree.chaid", "CHAIDClassifier", NewClassifier)
	r.Register("sklearn2pmml.tree.chaid", "CHAIDRegressor", NewRegressor)
}

// node is one decoded treelib node with its CHAID tag.
type node struct {
	id         string
	successors []string
	targets    []any
	indices    []any
	column     int
	splits     [][]int
	splitMap   [][]any
}

func decodeNode(n *store.Object) (*node, error) {
	id := n.GetOptional("identifier")
	successors, err := n.GetOptionalList("successors")
	if err != nil {
		return nil, err
	}
	tag, err := n.GetObject("tag")
	if err != nil {
		return nil, err
	}
	depV, err := tag.GetObject("dep_v")
	if err != nil {
		return nil, err
	}
	targets, err := depV.GetList("arr")
	if err != nil {
		return nil, err
	}
	indices, err := tag.GetList("indices")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(tag.TypeKey(), "indices", len(targets), len(indices)); err != nil {
		return nil, err
	}

	out := &node{id: schema.FormatValue(id), targets: targets, indices: indices, column: -1}
	for _, s := range successors {
		out.successors = append(out.successors, schema.FormatValue(s))
	}
	if len(out.successors) == 0 {
		return out, nil
	}

	split, err := tag.GetObject("split")
	if err != nil {
		return nil, err
	}
	if out.column, err = split.GetInteger("column_id"); err != nil {
		return nil, err
	}
	if out.splits, err = split.GetIntegerArrayList("splits"); err != nil {
		return nil, err
	}
	if out.splitMap, err = split.GetArrayList("split_map"); err != nil {
		return nil, err
	}
	if err := errors.CheckSize(split.TypeKey(), "splits", len(out.successors), len(out.splits)); err != nil {
		return nil, err
	}
	if err := errors.CheckSize(split.TypeKey(), "split_map", len(out.successors), len(out.splitMap)); err != nil {
		return nil, err
	}
	for i := range out.splits {
		if err := errors.CheckSize(split.TypeKey(), "split_map", len(out.splits[i]), len(out.splitMap[i])); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isMissing reports whether a split entry routes missing values. Float
// columns code them as -1, object columns as None.
func isMissing(index int, value any) bool {
	return index == -1 || value == nil
}

type treeEncoder struct {
	owner    string
	fn       pmml.MiningFunction
	nodes    map[string]*node
	order    []string
	schema   *schema.Schema
	enc      *schema.Encoder
	label    *schema.CategoricalLabel
	features map[int]*schema.CategoricalFeature
}

func encodeTree(obj *store.Object, fn pmml.MiningFunction, s *schema.Schema) (*pmml.TreeModel, error) {
	tree, err := obj.GetObject("tree_")
	if err != nil {
		return nil, err
	}
	nodes, err := tree.GetDict("nodes")
	if err != nil {
		return nil, err
	}
	e := &treeEncoder{
		owner:    obj.TypeKey(),
		fn:       fn,
		nodes:    map[string]*node{},
		schema:   s,
		enc:      s.Encoder(),
		features: map[int]*schema.CategoricalFeature{},
	}
	for _, key := range nodes.Keys {
		n, ok := nodes.Values[key].(*store.Object)
		if !ok {
			return nil, errors.NewAttributeTypeError(tree.TypeKey(), "nodes", "dict of nodes", "dict")
		}
		decoded, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		if decoded.id == "" {
			decoded.id = key
		}
		e.nodes[decoded.id] = decoded
		e.order = append(e.order, decoded.id)
	}
	if fn == pmml.MiningFunctionClassification {
		if e.label, err = s.CategoricalLabel(); err != nil {
			return nil, err
		}
	}

	root, ok := e.nodes[schema.FormatValue(tree.GetOptional("root"))]
	if !ok {
		return nil, errors.NewInvalidAttributeValueError(tree.TypeKey(), "root", tree.GetOptional("root"))
	}
	rootNode, err := e.encode(root, &pmml.True{})
	if err != nil {
		return nil, err
	}
	return &pmml.TreeModel{
		ModelBase:           modelgraph.NewModelBase(fn, s.Label()),
		SplitCharacteristic: "multiSplit",
		Node:                rootNode,
	}, nil
}

func (e *treeEncoder) encode(n *node, predicate pmml.Predicate) (*pmml.Node, error) {
	out := &pmml.Node{ID: n.id, Predicate: e.enc.InternPredicate(predicate), RecordCount: pmml.Float(float64(len(n.targets)))}
	if err := e.score(out, n); err != nil {
		return nil, err
	}
	if len(n.successors) == 0 {
		return out, nil
	}

	successors := make([]*node, len(n.successors))
	for i, id := range n.successors {
		s, ok := e.nodes[id]
		if !ok {
			return nil, errors.NewInvalidAttributeValueError(e.owner, "successors", id)
		}
		successors[i] = s
	}
	feature, err := e.feature(n.column)
	if err != nil {
		return nil, err
	}
	categories := feature.Values()

	unused := append([]string(nil), categories...)
	for i := range successors {
		for j, index := range n.splits[i] {
			value := n.splitMap[i][j]
			if isMissing(index, value) {
				continue
			}
			k := indexOf(unused, schema.FormatValue(value))
			if k < 0 {
				return nil, errors.NewInvalidAttributeValueError(e.owner, "split_map", value, categories...)
			}
			unused = append(unused[:k], unused[k+1:]...)
		}
	}

	// Categories never seen in training go to the successor with the most
	// training rows.
	largest := -1
	if len(unused) > 0 {
		for i, s := range successors {
			if largest < 0 || len(s.indices) >= len(successors[largest].indices) {
				largest = i
			}
		}
	}

	for i, s := range successors {
		var values []string
		withMissing := false
		for j, index := range n.splits[i] {
			value := n.splitMap[i][j]
			if isMissing(index, value) {
				withMissing = true
				continue
			}
			values = append(values, schema.FormatValue(value))
		}
		if i == largest {
			values = append(values, unused...)
		}

		var p pmml.Predicate
		switch {
		case len(values) > 0 && withMissing:
			p = &pmml.CompoundPredicate{
				BooleanOperator: pmml.BoolSurrogate,
				Predicates: []pmml.Predicate{
					modelgraph.ValuesPredicate(feature.Name(), feature.DataType(), values),
					modelgraph.MissingPredicate(feature.Name()),
				},
			}
		case len(values) > 0:
			p = modelgraph.ValuesPredicate(feature.Name(), feature.DataType(), values)
		case withMissing:
			p = modelgraph.MissingPredicate(feature.Name())
		default:
			p = &pmml.False{}
		}
		child, err := e.encode(s, p)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, child)
	}
	return out, nil
}

// score sets the mean target of regression nodes and the class counts of
// classification nodes. The most frequent class wins; ties go to the
// lower class index.
func (e *treeEncoder) score(out *pmml.Node, n *node) error {
	if e.fn == pmml.MiningFunctionRegression {
		values := make([]float64, len(n.targets))
		for i, v := range n.targets {
			switch v := v.(type) {
			case float64:
				values[i] = v
			case int:
				values[i] = float64(v)
			default:
				return errors.NewAttributeTypeError(e.owner, "dep_v.arr", "number", fmt.Sprintf("%T", v))
			}
		}
		if len(values) > 0 {
			out.Score = pmml.FormatNumber(stat.Mean(values, nil))
		}
		return nil
	}

	counts := make([]int, e.label.Size())
	for _, v := range n.targets {
		index, ok := classIndex(v)
		if !ok || index < 0 || index >= len(counts) {
			return errors.NewInvalidAttributeValueError(e.owner, "dep_v.arr", v)
		}
		counts[index]++
	}
	best := -1
	for i, count := range counts {
		if count == 0 {
			continue
		}
		if best < 0 || count > counts[best] {
			best = i
		}
		out.ScoreDistributions = append(out.ScoreDistributions, e.enc.InternScoreDistribution(e.label.Value(i), float64(count), nil))
	}
	if best >= 0 {
		out.Score = e.label.Value(best)
	}
	return nil
}

func classIndex(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// feature returns the split column as a categorical feature. Columns that
// have not been typed yet take their categories from the splits of the tree.
func (e *treeEncoder) feature(column int) (*schema.CategoricalFeature, error) {
	if f, ok := e.features[column]; ok {
		return f, nil
	}
	if column < 0 || column >= e.schema.NumberOfFeatures() {
		return nil, errors.NewSchemaSizeError(e.owner, "features", column+1, e.schema.NumberOfFeatures())
	}
	f := e.schema.Feature(column)

	var out *schema.CategoricalFeature
	switch f := f.(type) {
	case *schema.CategoricalFeature:
		out = f
	case interface {
		schema.Feature
		Values() []string
	}:
		out = schema.NewCategoricalFeature(f.Name(), f.DataType(), f.Values())
	default:
		values, dataType := schema.ValuesOf(e.observedCategories(column))
		cf, err := schema.ToCategoricalFeature(f, e.enc, dataType, values)
		if err != nil {
			return nil, err
		}
		out = cf
	}
	e.features[column] = out
	return out, nil
}

// observedCategories collects the non-missing split values of column in
// first-seen order, walking the nodes in stored order.
func (e *treeEncoder) observedCategories(column int) []any {
	var values []any
	seen := map[string]bool{}
	for _, key := range e.order {
		n := e.nodes[key]
		if n.column != column {
			continue
		}
		for i := range n.splits {
			for j, index := range n.splits[i] {
				value := n.splitMap[i][j]
				if isMissing(index, value) || seen[schema.FormatValue(value)] {
					continue
				}
				seen[schema.FormatValue(value)] = true
				values = append(values, value)
			}
		}
	}
	return values
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}
