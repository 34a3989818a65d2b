package pipeline

import "github.com/YuminosukeSato/skpmml/core/model"

// Register adds the pipeline containers to r. The "passthrough" keyword
// comes from compose.Register.
func Register(r *model.Registry) {
	r.Register("sklearn.pipeline", "Pipeline", NewPipeline)
	r.Register("sklearn.pipeline", "FeatureUnion", NewFeatureUnion)
	r.Register("sklearn2pmml.pipeline", "PMMLPipeline", NewPMMLPipeline)
}
