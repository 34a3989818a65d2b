// Package isotonic encodes IsotonicRegression as a piecewise-linear
// NormContinuous map, usable both as a pipeline step and as the final
// regressor.
package isotonic

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	outOfBoundsClip  = "clip"
	outOfBoundsNaN   = "nan"
	outOfBoundsRaise = "raise"
)

// IsotonicRegression maps its single input through the fitted thresholds.
type IsotonicRegression struct {
	model.RegressorBase
}

func NewIsotonicRegression(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &IsotonicRegression{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

// NumberOfFeatures is always one.
func (ir *IsotonicRegression) NumberOfFeatures() int {
	return 1
}

// thresholds reads the interpolation knots. 0.23 kept them in private
// attributes.
func (ir *IsotonicRegression) thresholds() ([]float64, []float64, error) {
	obj := ir.Object()
	xName, yName := "X_thresholds_", "y_thresholds_"
	if obj.Has("_necessary_X_") {
		xName, yName = "_necessary_X_", "_necessary_y_"
	}
	x, err := obj.GetNumberArray(xName)
	if err != nil {
		return nil, nil, err
	}
	y, err := obj.GetNumberArray(yName)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.CheckSize(ir.TypeKey(), yName, len(x), len(y)); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func (ir *IsotonicRegression) outliers() (string, error) {
	outOfBounds, err := ir.Object().GetEnum("out_of_bounds", outOfBoundsClip, outOfBoundsNaN, outOfBoundsRaise)
	if err != nil {
		return "", err
	}
	switch outOfBounds {
	case outOfBoundsClip:
		return pmml.OutliersAsExtremeValue, nil
	case outOfBoundsNaN:
		return pmml.OutliersAsMissing, nil
	}
	return "", errors.NewUnsupportedVariantError(ir.TypeKey(), "out_of_bounds="+outOfBounds)
}

func (ir *IsotonicRegression) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	if err := errors.CheckSize(ir.TypeKey(), "features", 1, len(features)); err != nil {
		return nil, err
	}
	x, y, err := ir.thresholds()
	if err != nil {
		return nil, err
	}
	outliers, err := ir.outliers()
	if err != nil {
		return nil, err
	}
	cf, err := schema.ToContinuousFeature(features[0], enc)
	if err != nil {
		return nil, err
	}

	norm := &pmml.NormContinuous{Field: cf.Name(), Outliers: outliers}
	for i := range x {
		norm.LinearNorms = append(norm.LinearNorms, &pmml.LinearNorm{Orig: x[i], Norm: y[i]})
	}
	name := modelgraph.FieldName("isotonicRegression", cf.Name())
	if pmmlName, ok := ir.Object().GetOptional("pmml_name_").(string); ok && pmmlName != "" {
		name = pmmlName
	}
	if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, norm); err != nil {
		return nil, err
	}
	return []schema.Feature{schema.NewContinuousFeature(name, pmml.DataTypeDouble)}, nil
}

// EncodeModel passes the mapped feature through an identity regression.
func (ir *IsotonicRegression) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	features, err := ir.EncodeFeatures(s.Features(), s.Encoder())
	if err != nil {
		return nil, err
	}
	return modelgraph.NewRegression(s.WithFeatures(features), []float64{1}, 0, pmml.NormalizationNone)
}

// Register adds IsotonicRegression to r.
func Register(r *model.Registry) {
	r.Register("sklearn.isotonic", "IsotonicRegression", NewIsotonicRegression)
}
