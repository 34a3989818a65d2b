package pipeline

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/store"
)

// PMMLPipeline adds user-declared input and target field names to
// Pipeline.
type PMMLPipeline struct {
	Pipeline
}

func NewPMMLPipeline(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &PMMLPipeline{Pipeline: Pipeline{Base: model.NewBase(obj, r)}}, nil
}

func (p *PMMLPipeline) ActiveFields() ([]string, error) {
	if p.Object().GetOptional("active_fields") == nil {
		return nil, nil
	}
	return p.Object().GetStringArray("active_fields")
}

// TargetFields reads target_fields, or the single target_field of
// sklearn2pmml 0.24.
func (p *PMMLPipeline) TargetFields() ([]string, error) {
	obj := p.Object()
	if obj.Has("target_field") {
		name, err := obj.GetOptionalString("target_field")
		if err != nil || name == "" {
			return nil, err
		}
		return []string{name}, nil
	}
	if obj.GetOptional("target_fields") == nil {
		return nil, nil
	}
	return obj.GetStringArray("target_fields")
}

// FeatureImportances returns pmml_feature_importances_ over the active
// fields, unless the final estimator records its own.
func (p *PMMLPipeline) FeatureImportances() ([]float64, error) {
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	if h, ok := final.(model.HasFeatureImportances); ok {
		own, err := h.FeatureImportances()
		if err != nil || own != nil {
			return nil, err
		}
	}
	return p.Object().GetOptionalNumberArray("pmml_feature_importances_")
}
