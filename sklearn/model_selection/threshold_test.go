package model_selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/model/modeltest"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
)

const logistic = `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.5.0",
	"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 2,
	"coef_": {"__ndarray__": [[1.0, 3.0]]}, "intercept_": {"__ndarray__": [-1.0]},
	"classes_": {"__ndarray__": ["no", "yes"]}}`

func TestThresholdClassifiers(t *testing.T) {
	tests := []struct {
		name string
		dump string
		want string
	}{
		{
			name: "fixed",
			dump: `{"__class__": "sklearn.model_selection._classification_threshold.FixedThresholdClassifier",
				"response_method": "predict_proba", "threshold": 0.3, "estimator_": ` + logistic + `}`,
			want: "0.3",
		},
		{
			name: "tuned",
			dump: `{"__class__": "sklearn.model_selection.TunedThresholdClassifierCV",
				"response_method": "auto", "best_threshold_": 0.65, "estimator_": ` + logistic + `}`,
			want: "0.65",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := modeltest.Estimator(t, tt.dump, Register, linear_model.Register)
			assert.Equal(t, 2, e.NumberOfFeatures())
			m, err := model.Encode(e, s)
			require.NoError(t, err)

			field := modelgraph.OutputField(m, "thresholded(y)")
			require.NotNil(t, field)
			assert.Equal(t, pmml.ResultTransformedValue, field.Feature)
			expr := field.Expression.(*pmml.Apply)
			assert.Equal(t, "if", expr.Function)
			condition := expr.Expressions[0].(*pmml.Apply)
			assert.Equal(t, "lessThan", condition.Function)
			assert.Equal(t, &pmml.FieldRef{Field: "probability(yes)"}, condition.Expressions[0])
			assert.Equal(t, tt.want, condition.Expressions[1].(*pmml.Constant).Value)
			assert.Equal(t, "no", expr.Expressions[1].(*pmml.Constant).Value)
			assert.Equal(t, "yes", expr.Expressions[2].(*pmml.Constant).Value)
		})
	}
}

func TestThresholdClassifierErrors(t *testing.T) {
	tests := []struct {
		name     string
		attrs    string
		wantKind errors.Kind
	}{
		{"auto threshold", `"threshold": "auto"`, errors.KindInvalidAttributeValue},
		{"decision function", `"threshold": 0.0, "response_method": "decision_function"`, errors.KindUnsupportedAlgorithmVariant},
		{"unknown response method", `"threshold": 0.5, "response_method": "predict"`, errors.KindInvalidAttributeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := fmt.Sprintf(`{"__class__": "sklearn.model_selection.FixedThresholdClassifier", %s, "estimator_": %s}`, tt.attrs, logistic)
			e, s := modeltest.Estimator(t, dump, Register, linear_model.Register)
			_, err := model.Encode(e, s)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))
		})
	}

	t.Run("multiclass", func(t *testing.T) {
		multinomial := `{"__class__": "sklearn.linear_model.LogisticRegression", "_sklearn_version": "1.5.0",
			"multi_class": "auto", "solver": "lbfgs", "n_features_in_": 1,
			"coef_": {"__ndarray__": [[1.0], [2.0], [3.0]]}, "intercept_": {"__ndarray__": [0.0, 0.0, 0.0]},
			"classes_": {"__ndarray__": ["a", "b", "c"]}}`
		dump := `{"__class__": "sklearn.model_selection.FixedThresholdClassifier", "threshold": 0.5, "estimator_": ` + multinomial + `}`
		e, s := modeltest.Estimator(t, dump, Register, linear_model.Register)
		_, err := model.Encode(e, s)
		assert.Equal(t, errors.KindSchemaSizeMismatch, errors.KindOf(err))
	})
}
