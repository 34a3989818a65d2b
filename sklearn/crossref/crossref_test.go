package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

func TestMemorizeThenRecall(t *testing.T) {
	enc, _ := modeltest.NewEncoder()
	memorizer := modeltest.Construct(t, modeltest.Decode(t,
		`{"__class__": "sklearn2pmml.cross_reference.Memorizer", "names": ["a", "b"]}`), Register).(model.Transformer)
	recaller := modeltest.Construct(t, modeltest.Decode(t,
		`{"__class__": "sklearn2pmml.cross_reference.Recaller", "names": ["b", "a"]}`), Register).(model.Transformer)

	assert.Equal(t, 2, memorizer.NumberOfFeatures())
	assert.Equal(t, -1, recaller.NumberOfFeatures())

	a := schema.NewContinuousFeature("a", pmml.DataTypeDouble)
	b := schema.NewCategoricalFeature("b", pmml.DataTypeString, []string{"x", "y"})
	out, err := memorizer.EncodeFeatures([]schema.Feature{a, b}, enc)
	require.NoError(t, err)
	assert.Empty(t, out)

	recalled, err := recaller.EncodeFeatures(nil, enc)
	require.NoError(t, err)
	assert.Equal(t, []schema.Feature{b, a}, recalled)
}

func TestCrossReferenceErrors(t *testing.T) {
	enc, _ := modeltest.NewEncoder()

	t.Run("size mismatch", func(t *testing.T) {
		memorizer := modeltest.Construct(t, modeltest.Decode(t,
			`{"__class__": "sklearn2pmml.cross_reference.Memorizer", "names": ["a"]}`), Register).(model.Transformer)
		_, err := memorizer.EncodeFeatures(nil, enc)
		assert.Equal(t, errors.KindSchemaSizeMismatch, errors.KindOf(err))
	})

	t.Run("nothing memorized", func(t *testing.T) {
		recaller := modeltest.Construct(t, modeltest.Decode(t,
			`{"__class__": "sklearn2pmml.cross_reference.Recaller", "names": ["missing"]}`), Register).(model.Transformer)
		_, err := recaller.EncodeFeatures(nil, enc)
		assert.Error(t, err)
	})
}
