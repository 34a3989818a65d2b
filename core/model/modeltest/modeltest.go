// Package modeltest provides helpers for encoder tests: decoding inline
// attribute dumps and building the schema an estimator is encoded against.
package modeltest

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/log"
)

// Decode parses a JSON attribute dump.
func Decode(t testing.TB, dump string) *store.Object {
	t.Helper()
	obj, err := store.Decode([]byte(dump), store.FormatJSON)
	require.NoError(t, err)
	return obj
}

// NewEncoder returns an encoder logging to an in-memory debug logger.
func NewEncoder() (*schema.Encoder, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return schema.NewEncoder(logger), logger
}

// Construct builds obj with a registry populated by the given register
// functions.
func Construct(t testing.TB, obj *store.Object, register ...func(*model.Registry)) model.Step {
	t.Helper()
	r := model.NewRegistry()
	for _, fn := range register {
		fn(r)
	}
	step, err := r.Construct(obj)
	require.NoError(t, err)
	return step
}

// Schema builds the label and initial features of e the way a top-level
// conversion does.
func Schema(t testing.TB, e model.Estimator, enc *schema.Encoder) *schema.Schema {
	t.Helper()
	label, err := model.EncodeLabel(e, nil, enc)
	require.NoError(t, err)
	features, err := model.InitialFeatures(e, nil, enc)
	require.NoError(t, err)
	return schema.New(enc, label, features)
}

// Estimator decodes dump, constructs it and returns it with its schema.
func Estimator(t testing.TB, dump string, register ...func(*model.Registry)) (model.Estimator, *schema.Schema) {
	t.Helper()
	step := Construct(t, Decode(t, dump), register...)
	e, ok := step.(model.Estimator)
	require.True(t, ok, "%s is not an estimator", step.Object().TypeKey())
	enc, _ := NewEncoder()
	return e, Schema(t, e, enc)
}

// TreeNode is one row of a test tree's node table. Leaves have a negative Feature.
type TreeNode struct {
	Left, Right int
	Feature     int
	Threshold   float64
	Value       []float64
	Samples     int
}

// Leaf returns a leaf node.
func Leaf(samples int, value ...float64) TreeNode {
	return TreeNode{Left: -1, Right: -1, Feature: -2, Threshold: -2, Value: value, Samples: samples}
}

// Split returns a split node.
func Split(left, right, feature int, threshold float64, samples int, value ...float64) TreeNode {
	return TreeNode{Left: left, Right: right, Feature: feature, Threshold: threshold, Value: value, Samples: samples}
}

// TreeJSON renders nodes as a sklearn.tree._tree.Tree attribute dump.
func TreeJSON(t testing.TB, nodes ...TreeNode) string {
	t.Helper()
	n := len(nodes)
	dump := map[string]any{
		"__class__":      "sklearn.tree._tree.Tree",
		"children_left":  make([]int, n),
		"children_right": make([]int, n),
		"feature":        make([]int, n),
		"threshold":      make([]float64, n),
		"n_node_samples": make([]int, n),
	}
	values := make([][][]float64, n)
	for i, node := range nodes {
		dump["children_left"].([]int)[i] = node.Left
		dump["children_right"].([]int)[i] = node.Right
		dump["feature"].([]int)[i] = node.Feature
		dump["threshold"].([]float64)[i] = node.Threshold
		dump["n_node_samples"].([]int)[i] = node.Samples
		values[i] = [][]float64{node.Value}
	}
	dump["value"] = map[string]any{"__ndarray__": values, "dtype": "float64"}
	data, err := json.Marshal(dump)
	require.NoError(t, err)
	return string(data)
}
