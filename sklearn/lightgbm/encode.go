package lightgbm

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// splitFeature is a schema feature as seen by the splits on it.
type splitFeature struct {
	name     string
	dataType pmml.DataType
	// categories maps category codes to values; nil for numeric features.
	categories []string
}

// featureResolver converts schema features on first use: numeric features
// to continuous ones, categorical features to categorical ones whose values
// are the pandas categories or the integer codes.
type featureResolver struct {
	booster *Booster
	schema  *schema.Schema
	cache   map[int]*splitFeature
}

func newFeatureResolver(b *Booster, s *schema.Schema) *featureResolver {
	return &featureResolver{booster: b, schema: s, cache: map[int]*splitFeature{}}
}

func (r *featureResolver) feature(index int) (*splitFeature, error) {
	if sf, ok := r.cache[index]; ok {
		return sf, nil
	}
	if index < 0 || index >= r.schema.NumberOfFeatures() {
		return nil, errors.NewSchemaSizeError("LightGBM", "features", index+1, r.schema.NumberOfFeatures())
	}
	f := r.schema.Feature(index)
	enc := r.schema.Encoder()

	var sf *splitFeature
	if !r.booster.IsCategorical(index) {
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		sf = &splitFeature{name: cf.Name(), dataType: cf.DataType()}
	} else {
		values, dataType, err := r.categories(index, f)
		if err != nil {
			return nil, err
		}
		cf, err := schema.ToCategoricalFeature(f, enc, dataType, values)
		if err != nil {
			return nil, err
		}
		sf = &splitFeature{name: cf.Name(), dataType: cf.DataType(), categories: cf.Values()}
	}
	r.cache[index] = sf
	return sf, nil
}

func (r *featureResolver) categories(index int, f schema.Feature) ([]string, pmml.DataType, error) {
	if cf, ok := f.(*schema.CategoricalFeature); ok {
		return cf.Values(), cf.DataType(), nil
	}
	if r.booster.PandasCategorical != nil {
		k := r.booster.CategoricalIndex(index)
		if k >= len(r.booster.PandasCategorical) {
			return nil, "", errors.NewSchemaSizeError("LightGBM", "pandas_categorical", k+1, len(r.booster.PandasCategorical))
		}
		values, dataType := schema.ValuesOf(r.booster.PandasCategorical[k])
		return values, dataType, nil
	}

	// codes as listed in feature_infos
	var codes []int
	for _, part := range strings.Split(r.booster.FeatureInfos[index], ":") {
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, "", errors.NewInvalidAttributeValueError("LightGBM", "feature_infos", r.booster.FeatureInfos[index], "colon-separated category codes")
		}
		codes = append(codes, code)
	}
	max := 0
	for _, c := range codes {
		if c > max {
			max = c
		}
	}
	values := make([]string, max+1)
	for i := range values {
		values[i] = strconv.Itoa(i)
	}
	return values, pmml.DataTypeInteger, nil
}

type treeEncoder struct {
	tree     *Tree
	resolver *featureResolver
	enc      *schema.Encoder
}

// encodeTree builds a regression TreeModel predicting the raw score of t.
// Missing values follow the learned default direction of each split.
func encodeTree(t *Tree, resolver *featureResolver, s *schema.Schema) (*pmml.TreeModel, error) {
	e := &treeEncoder{tree: t, resolver: resolver, enc: s.Encoder()}
	var root *pmml.Node
	if t.NumLeaves == 1 {
		root = &pmml.Node{ID: "0", Predicate: &pmml.True{}, Score: pmml.FormatNumber(t.LeafValue[0])}
	} else {
		var err error
		if root, err = e.node(0, &pmml.True{}); err != nil {
			return nil, err
		}
	}
	return &pmml.TreeModel{
		ModelBase:            modelgraph.NewModelBase(pmml.MiningFunctionRegression, s.Label()),
		MissingValueStrategy: pmml.MissingValueStrategyDefaultChild,
		SplitCharacteristic:  "binarySplit",
		Node:                 root,
	}, nil
}

// node encodes child reference c: internal node c, or leaf ^c when
// negative. Leaves take ids after the internal nodes.
func (e *treeEncoder) node(c int, predicate pmml.Predicate) (*pmml.Node, error) {
	t := e.tree
	n := &pmml.Node{Predicate: e.enc.InternPredicate(predicate), RecordCount: t.count(c)}
	if c < 0 {
		leaf := ^c
		if leaf >= len(t.LeafValue) {
			return nil, errors.NewSchemaSizeError("Tree", "leaf_value", leaf+1, len(t.LeafValue))
		}
		n.ID = strconv.Itoa(t.NumLeaves - 1 + leaf)
		n.Score = pmml.FormatNumber(t.LeafValue[leaf])
		return n, nil
	}
	if c >= len(t.SplitFeature) {
		return nil, errors.NewSchemaSizeError("Tree", "split_feature", c+1, len(t.SplitFeature))
	}
	n.ID = strconv.Itoa(c)

	sf, err := e.resolver.feature(t.SplitFeature[c])
	if err != nil {
		return nil, err
	}
	var left, right pmml.Predicate
	var defaultLeft bool
	if t.IsCategorical(c) {
		left, right, defaultLeft, err = e.categoricalSplit(c, sf)
	} else {
		left, right, defaultLeft = e.numericalSplit(c, sf)
	}
	if err != nil {
		return nil, err
	}

	leftChild, err := e.node(t.LeftChild[c], left)
	if err != nil {
		return nil, err
	}
	rightChild, err := e.node(t.RightChild[c], right)
	if err != nil {
		return nil, err
	}
	n.Nodes = []*pmml.Node{leftChild, rightChild}
	if defaultLeft {
		n.DefaultChild = leftChild.ID
	} else {
		n.DefaultChild = rightChild.ID
	}
	return n, nil
}

// numericalSplit sends x <= threshold left. Zero-as-missing splits also
// route exact zeros the default way.
func (e *treeEncoder) numericalSplit(c int, sf *splitFeature) (left, right pmml.Predicate, defaultLeft bool) {
	t := e.tree
	value := pmml.FormatNumber(t.Threshold[c])
	left = &pmml.SimplePredicate{Field: sf.name, Operator: pmml.OpLessOrEqual, Value: value}
	right = &pmml.SimplePredicate{Field: sf.name, Operator: pmml.OpGreaterThan, Value: value}
	zeroLeft := 0 <= t.Threshold[c]

	switch t.MissingType(c) {
	case MissingNaN:
		return left, right, t.DefaultLeft(c)
	case MissingZero:
		defaultLeft = t.DefaultLeft(c)
		if defaultLeft == zeroLeft {
			return left, right, defaultLeft
		}
		isZero := &pmml.SimplePredicate{Field: sf.name, Operator: pmml.OpEqual, Value: "0"}
		notZero := &pmml.SimplePredicate{Field: sf.name, Operator: pmml.OpNotEqual, Value: "0"}
		if defaultLeft {
			left = &pmml.CompoundPredicate{BooleanOperator: pmml.BoolOr, Predicates: []pmml.Predicate{left, isZero}}
			right = &pmml.CompoundPredicate{BooleanOperator: pmml.BoolAnd, Predicates: []pmml.Predicate{right, notZero}}
		} else {
			left = &pmml.CompoundPredicate{BooleanOperator: pmml.BoolAnd, Predicates: []pmml.Predicate{left, notZero}}
			right = &pmml.CompoundPredicate{BooleanOperator: pmml.BoolOr, Predicates: []pmml.Predicate{right, isZero}}
		}
		return left, right, defaultLeft
	}
	// missing values are treated as zero
	return left, right, zeroLeft
}

// categoricalSplit sends the categories of the node's bitset left.
// Missing values go right unless they count as category 0.
func (e *treeEncoder) categoricalSplit(c int, sf *splitFeature) (left, right pmml.Predicate, defaultLeft bool, err error) {
	if sf.categories == nil {
		return nil, nil, false, errors.NewCapabilityCastError(sf.name, "continuous feature", "categorical feature")
	}
	codes, err := e.tree.Categories(c)
	if err != nil {
		return nil, nil, false, err
	}
	var values, unseen []string
	for _, code := range codes {
		if code >= len(sf.categories) {
			unseen = append(unseen, strconv.Itoa(code))
			continue
		}
		values = append(values, sf.categories[code])
		if code == 0 && e.tree.MissingType(c) != MissingNaN {
			defaultLeft = true
		}
	}
	if len(unseen) > 0 {
		e.enc.Logger().Debug("Dropped category codes without values", log.FeaturesKey, sf.name, "codes", unseen)
	}
	if len(values) == 0 {
		return &pmml.False{}, &pmml.True{}, false, nil
	}
	return modelgraph.ValuesPredicate(sf.name, sf.dataType, values), modelgraph.NotValuesPredicate(sf.name, sf.dataType, values), defaultLeft, nil
}
