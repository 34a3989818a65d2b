package compose

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/preprocessing"
)

const scaler = `{"__class__": "sklearn.preprocessing._data.StandardScaler", "mean_": {"__ndarray__": [1.0]}, "scale_": {"__ndarray__": [2.0]}}`

func columnTransformer(t *testing.T, transformers string, extra string) *ColumnTransformer {
	t.Helper()
	dump := fmt.Sprintf(`{"__class__": "sklearn.compose._column_transformer.ColumnTransformer", "transformers_": %s%s}`, transformers, extra)
	step := modeltest.Construct(t, modeltest.Decode(t, dump), Register, preprocessing.Register)
	ct, ok := step.(*ColumnTransformer)
	require.True(t, ok)
	return ct
}

func inputs(enc *schema.Encoder, names ...string) []schema.Feature {
	features := make([]schema.Feature, len(names))
	for i, name := range names {
		enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
		features[i] = schema.NewWildcardFeature(name, pmml.DataTypeDouble)
	}
	return features
}

func names(features []schema.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Name()
	}
	return out
}

func TestColumnTransformer(t *testing.T) {
	ct := columnTransformer(t, `[
		["num", `+scaler+`, ["a"]],
		["cat", {"__class__": "sklearn.preprocessing.OneHotEncoder", "categories_": [["u", "v"]]}, [1]],
		["remainder", "drop", [2]]
	]`, "")
	enc, _ := modeltest.NewEncoder()
	features, err := ct.EncodeFeatures(inputs(enc, "a", "b", "c"), enc)
	require.NoError(t, err)

	require.Len(t, features, 3)
	assert.Equal(t, "standardScaler(a)", features[0].Name())
	for i, want := range []string{"u", "v"} {
		bf, ok := features[i+1].(*schema.BinaryFeature)
		require.True(t, ok)
		assert.Equal(t, "b", bf.Name())
		assert.Equal(t, want, bf.Value())
	}
	assert.Equal(t, pmml.OpTypeCategorical, enc.DataField("b").OpType)
}

func TestColumnSelectors(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		want    []string
	}{
		{"single name", `"c"`, []string{"c"}},
		{"single index", `0`, []string{"a"}},
		{"negative index", `-1`, []string{"c"}},
		{"name list", `["c", "a"]`, []string{"c", "a"}},
		{"index array", `{"__ndarray__": [2, 1]}`, []string{"c", "b"}},
		{"boolean mask", `{"__ndarray__": [true, false, true]}`, []string{"a", "c"}},
		{"remainder columns", `{"__class__": "sklearn.compose._column_transformer._RemainderColsList", "data": [1]}`, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := columnTransformer(t, `[["remainder", "passthrough", `+tt.columns+`]]`, "")
			enc, _ := modeltest.NewEncoder()
			features, err := ct.EncodeFeatures(inputs(enc, "a", "b", "c"), enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(features))
		})
	}
}

func TestColumnSelectorErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		want    errors.Kind
	}{
		{"unknown name", `["z"]`, errors.KindInvalidAttributeValue},
		{"index out of range", `[3]`, errors.KindInvalidAttributeValue},
		{"float column", `[1.5]`, errors.KindAttributeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := columnTransformer(t, `[["remainder", "passthrough", `+tt.columns+`]]`, "")
			enc, _ := modeltest.NewEncoder()
			_, err := ct.EncodeFeatures(inputs(enc, "a", "b", "c"), enc)
			assert.Equal(t, tt.want, errors.KindOf(err))
		})
	}
}

func TestLazyWildcardSynthesis(t *testing.T) {
	ct := columnTransformer(t, `[["num", `+scaler+`, ["age"]], ["rest", "passthrough", [2]]]`, "")
	enc, _ := modeltest.NewEncoder()

	var initializer model.Initializer = ct
	features, err := initializer.InitializeFeatures(enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"standardScaler(age)", "x3"}, names(features))

	var declared []string
	for _, df := range enc.DataFields() {
		declared = append(declared, df.Name)
	}
	assert.Equal(t, []string{"age", "x3"}, declared)
}

func TestInitializeFeatureNamesIn(t *testing.T) {
	ct := columnTransformer(t, `[["keep", "passthrough", ["b"]], ["remainder", "drop", ["a"]]]`,
		`, "feature_names_in_": {"__ndarray__": ["a", "b"]}, "n_features_in_": 2`)
	enc, _ := modeltest.NewEncoder()
	features, err := ct.InitializeFeatures(enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(features))
	assert.NotNil(t, enc.DataField("a"))
	assert.Equal(t, 2, ct.NumberOfFeatures())
}

func TestKeywords(t *testing.T) {
	r := model.NewRegistry()
	Register(r)
	enc, _ := modeltest.NewEncoder()
	features := inputs(enc, "a")

	drop, err := r.AsTransformer("drop")
	require.NoError(t, err)
	out, err := drop.EncodeFeatures(features, enc)
	require.NoError(t, err)
	assert.Empty(t, out)

	pass, err := r.AsTransformer(nil)
	require.NoError(t, err)
	assert.True(t, IsPassThrough(pass))
	out, err = pass.EncodeFeatures(features, enc)
	require.NoError(t, err)
	assert.Equal(t, features, out)
	assert.Equal(t, "passthrough", pass.Object().Name())
}
