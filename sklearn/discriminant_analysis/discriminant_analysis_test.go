package discriminant_analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/pmml"
)

func ldaDump(version, coef, intercept, classes string) string {
	return fmt.Sprintf(`{
		"__class__": "sklearn.discriminant_analysis.LinearDiscriminantAnalysis",
		"_sklearn_version": %q,
		"coef_": {"__ndarray__": %s},
		"intercept_": {"__ndarray__": %s},
		"classes_": {"__ndarray__": %s}
	}`, version, coef, intercept, classes)
}

const (
	threeClassCoef = `[[1.0, 2.0], [0.5, -1.0], [-1.5, 1.0]]`
	threeClassIcpt = `[0.1, 0.2, 0.3]`
)

func TestLinearDiscriminantAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		memberNorm    pmml.NormalizationMethod
		normalization pmml.NormalizationMethod
	}{
		{"softmax since 0.21", "1.2.2", "", pmml.NormalizationSoftmax},
		{"one-vs-rest before 0.21", "0.20.3", pmml.NormalizationLogit, pmml.NormalizationSimpleMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := modeltest.Estimator(t, ldaDump(tt.version, threeClassCoef, threeClassIcpt, `[1, 2, 3]`), Register)
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			mm, ok := m.(*pmml.MiningModel)
			require.True(t, ok)
			require.Len(t, mm.Segmentation.Segments, 4)

			member := mm.Segmentation.Segments[0].Model.(*pmml.RegressionModel)
			assert.Equal(t, tt.memberNorm, member.NormalizationMethod)
			assert.Equal(t, "decisionFunction(1)", member.Output.OutputFields[0].Name)

			final := mm.Segmentation.Segments[3].Model.(*pmml.RegressionModel)
			assert.Equal(t, tt.normalization, final.NormalizationMethod)
			assert.Len(t, mm.Output.OutputFields, 3)
		})
	}
}

func TestLinearDiscriminantAnalysisBinary(t *testing.T) {
	e, s := modeltest.Estimator(t, ldaDump("1.2.2", `[[0.7, -0.2]]`, `[1.0]`, `["neg", "pos"]`), Register)
	c, ok := e.(model.Classifier)
	require.True(t, ok)
	assert.True(t, c.HasProbabilityDistribution())

	m, err := model.Encode(e, s)
	require.NoError(t, err)
	rm, ok := m.(*pmml.RegressionModel)
	require.True(t, ok)
	assert.Equal(t, pmml.NormalizationLogit, rm.NormalizationMethod)
	assert.Equal(t, "pos", rm.RegressionTables[0].TargetCategory)
	assert.Len(t, rm.Output.OutputFields, 2)
}
