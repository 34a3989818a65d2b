package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"0.19", Version{0, 19}},
		{"0.19a1", Version{0, 19}},
		{"0.19rc1", Version{0, 19}},
		{"0.19.dev1", Version{0, 19}},
		{"0.22.post1", Version{0, 22}},
		{"0.22.2.post1", Version{0, 22, 2}},
		{"1.3.2", Version{1, 3, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("dev")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.18", "0.19", -1},
		{"0.19", "0.19", 0},
		{"0.19.0", "0.19", 0},
		{"0.19.1", "0.19", 0},
		{"0.19", "0.19.0", 0},
		{"0.19.1", "0.19.0", 1},
		{"0.19", "0.19.1", -1},
		{"0.19.0", "0.19.1", -1},
		{"0.19.1", "0.19.1", 0},
		{"0.20", "0.19", 1},
		{"0.9", "0.19", -1},
		{"1.0", "0.24.2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(MustParse(tt.a), MustParse(tt.b)))
		})
	}
}

func TestInSupportedRange(t *testing.T) {
	assert.True(t, InSupportedRange(MustParse("0.18")))
	assert.True(t, InSupportedRange(MustParse("1.5.2")))
	assert.False(t, InSupportedRange(MustParse("0.17.1")))
	assert.False(t, InSupportedRange(MustParse("1.9.0")))
}

func TestResolverAtLeast(t *testing.T) {
	obj := store.NewObject("sklearn.ensemble", "IsolationForest", nil)

	known := NewResolver(obj, "0.21.3")
	assert.True(t, known.AtLeast(IsolationForestCorrected))
	assert.True(t, known.AtLeast(IsolationForestNodeSamples))
	assert.False(t, known.AtLeast(MultiClassAuto))
	assert.True(t, known.Before(MultiClassAuto))

	unknown := NewResolver(obj, "")
	assert.False(t, unknown.Known())
	assert.False(t, unknown.AtLeast("0.1"))
	assert.False(t, unknown.Before("0.1"))
}

func TestResolve(t *testing.T) {
	obj := store.NewObject("sklearn.ensemble", "IsolationForest", map[string]any{"_threshold_": -0.1})
	r := NewResolver(obj, "")

	branch, err := Resolve(r, Probe[string]{"threshold_", "new"}, Probe[string]{"_threshold_", "old"})
	require.NoError(t, err)
	assert.Equal(t, "old", branch)

	_, err = Resolve(r, Probe[string]{"offset_", "x"})
	require.Error(t, err)
	assert.Equal(t, errors.KindUnsupportedRevision, errors.KindOf(err))
}
