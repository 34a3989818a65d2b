// Package discriminant_analysis encodes LinearDiscriminantAnalysis.
package discriminant_analysis

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
)

// LinearDiscriminantAnalysis is a linear classifier whose multi-class
// probabilities are a softmax over the per-class decision functions.
// Releases before 0.21 normalised them one-vs-rest instead.
type LinearDiscriminantAnalysis struct {
	*linear_model.LinearClassifier
}

func NewLinearDiscriminantAnalysis(obj *store.Object, r *model.Registry) (model.Step, error) {
	step, err := linear_model.NewProbabilisticClassifier(obj, r)
	if err != nil {
		return nil, err
	}
	return &LinearDiscriminantAnalysis{LinearClassifier: step.(*linear_model.LinearClassifier)}, nil
}

func (lda *LinearDiscriminantAnalysis) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	rows, _, _, err := lda.Object().GetMatrix("coef_")
	if err != nil {
		return nil, err
	}
	if rows >= 3 && lda.Version().AtLeast(version.LDASoftmax) {
		return lda.EncodePerClass(s, pmml.NormalizationNone, pmml.NormalizationSoftmax)
	}
	return lda.EncodeOneVsRest(s)
}

// Register adds LinearDiscriminantAnalysis to r.
func Register(r *model.Registry) {
	r.Register("sklearn.discriminant_analysis", "LinearDiscriminantAnalysis", NewLinearDiscriminantAnalysis)
}
