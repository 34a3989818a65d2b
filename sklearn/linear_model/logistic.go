package linear_model

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	multiClassAuto        = "auto"
	multiClassDeprecated  = "deprecated"
	multiClassMultinomial = "multinomial"
	multiClassOvR         = "ovr"
	multiClassWarn        = "warn"

	solverLiblinear = "liblinear"
)

// LogisticRegression encodes LogisticRegression and LogisticRegressionCV.
// The multi_class setting decides between one-vs-rest and multinomial
// encodings; its meaning changed over several releases.
type LogisticRegression struct {
	LinearClassifier
}

func NewLogisticRegression(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &LogisticRegression{LinearClassifier: *newLinearClassifier(obj, r, always)}, nil
}

func (lr *LogisticRegression) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	multiClass, err := lr.MultiClass()
	if err != nil {
		return nil, err
	}
	switch multiClass {
	case multiClassMultinomial:
		if lr.coefRows() == 1 && !lr.Version().AtLeast(version.LogisticMultinomialBinary) {
			return lr.EncodeOneVsRest(s)
		}
		return lr.encodeMultinomial(s)
	default:
		return lr.EncodeOneVsRest(s)
	}
}

// MultiClass resolves multi_class to "ovr" or "multinomial".
func (lr *LogisticRegression) MultiClass() (string, error) {
	obj := lr.Object()
	v := lr.Version()

	if !obj.Has("multi_class") {
		if !v.Known() || v.AtLeast(version.MultiClassAbsent) {
			return lr.autoMultiClass(""), nil
		}
		return "", errors.NewAttributeMissingError(obj.TypeKey(), "multi_class")
	}

	multiClass, err := obj.GetEnum("multi_class", multiClassAuto, multiClassDeprecated, multiClassMultinomial, multiClassOvR, multiClassWarn)
	if err != nil {
		return "", err
	}
	switch multiClass {
	case multiClassWarn:
		return multiClassOvR, nil
	case multiClassAuto:
		if !v.AtLeast(version.MultiClassAuto) {
			return "", errors.NewInvalidAttributeValueError(obj.TypeKey(), "multi_class", multiClass, multiClassMultinomial, multiClassOvR)
		}
		solver, err := obj.GetOptionalString("solver")
		if err != nil {
			return "", err
		}
		return lr.autoMultiClass(solver), nil
	case multiClassDeprecated:
		if !v.AtLeast(version.MultiClassDeprecated) {
			return "", errors.NewInvalidAttributeValueError(obj.TypeKey(), "multi_class", multiClass, multiClassMultinomial, multiClassOvR)
		}
		return lr.autoMultiClass(""), nil
	}
	return multiClass, nil
}

func (lr *LogisticRegression) autoMultiClass(solver string) string {
	if solver == solverLiblinear || lr.coefRows() == 1 {
		return multiClassOvR
	}
	return multiClassMultinomial
}

func (lr *LogisticRegression) coefRows() int {
	rows, _, _, err := lr.Object().GetMatrix("coef_")
	if err != nil {
		return -1
	}
	return rows
}
