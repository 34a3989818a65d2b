// Package pipeline encodes Pipeline, PMMLPipeline and FeatureUnion by
// threading features through their steps and delegating the model to the
// final estimator.
package pipeline

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/compose"
)

// Pipeline is a sequence of transformers optionally ending in an estimator.
// It takes the capabilities of its final estimator.
type Pipeline struct {
	model.Base
}

func NewPipeline(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Pipeline{Base: model.NewBase(obj, r)}, nil
}

type namedTransformer struct {
	name string
	model.Transformer
}

func (p *Pipeline) steps() ([]store.Tuple, error) {
	steps, err := p.Object().GetTupleList("steps")
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, errors.NewInvalidAttributeValueError(p.TypeKey(), "steps", "[]", "one or more steps")
	}
	for _, step := range steps {
		if err := errors.CheckSize(p.TypeKey(), "steps entry", 2, len(step)); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

// finalEstimator returns nil when the last step is a transformer or
// "passthrough".
func (p *Pipeline) finalEstimator() (model.Estimator, error) {
	steps, err := p.steps()
	if err != nil {
		return nil, err
	}
	obj, ok := steps[len(steps)-1][1].(*store.Object)
	if !ok {
		return nil, nil
	}
	step, err := p.Registry().Construct(obj)
	if err != nil {
		return nil, err
	}
	e, _ := step.(model.Estimator)
	return e, nil
}

// transformers returns the steps before the final estimator, or all steps
// when there is none.
func (p *Pipeline) transformers() ([]namedTransformer, error) {
	steps, err := p.steps()
	if err != nil {
		return nil, err
	}
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	if final != nil {
		steps = steps[:len(steps)-1]
	}
	out := make([]namedTransformer, len(steps))
	for i, step := range steps {
		name, _ := step[0].(string)
		t, err := p.Registry().AsTransformer(step[1])
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", name)
		}
		out[i] = namedTransformer{name: name, Transformer: t}
	}
	return out, nil
}

// Head returns the first step that reads the input columns.
func (p *Pipeline) Head() (model.Step, error) {
	transformers, err := p.transformers()
	if err != nil {
		return nil, err
	}
	for _, t := range transformers {
		if compose.IsPassThrough(t.Transformer) {
			continue
		}
		if h, ok := t.Transformer.(model.HasHead); ok {
			return h.Head()
		}
		return t.Transformer, nil
	}
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, errors.NewValueError("Head", p.TypeKey()+" has only passthrough steps")
	}
	if h, ok := final.(model.HasHead); ok {
		return h.Head()
	}
	return final, nil
}

func (p *Pipeline) Kind() model.Kind {
	if final, err := p.finalEstimator(); err == nil && final != nil {
		return final.Kind()
	}
	return model.KindTransformer
}

func (p *Pipeline) MiningFunction() pmml.MiningFunction {
	if final, err := p.finalEstimator(); err == nil && final != nil {
		return final.MiningFunction()
	}
	return ""
}

// NumberOfFeatures is the head's. A head that initializes its own
// features reports -1, since it may declare a subset of the columns.
func (p *Pipeline) NumberOfFeatures() int {
	head, err := p.Head()
	if err != nil {
		return -1
	}
	switch h := head.(type) {
	case model.Initializer:
		return -1
	case model.Estimator:
		return h.NumberOfFeatures()
	case model.Transformer:
		return h.NumberOfFeatures()
	}
	return -1
}

func (p *Pipeline) FeatureNamesIn() ([]string, error) {
	head, err := p.Head()
	if err != nil {
		return nil, err
	}
	if h, ok := head.(model.HasFeatureNamesIn); ok {
		return h.FeatureNamesIn()
	}
	return nil, nil
}

func (p *Pipeline) classifier() (model.Classifier, error) {
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	c, ok := final.(model.Classifier)
	if !ok || final.Kind() != model.KindClassifier {
		return nil, errors.NewCapabilityCastError(p.TypeKey(), p.Kind().String(), "Classifier")
	}
	return c, nil
}

func (p *Pipeline) Classes() ([]any, error) {
	c, err := p.classifier()
	if err != nil {
		return nil, err
	}
	return c.Classes()
}

func (p *Pipeline) HasProbabilityDistribution() bool {
	c, err := p.classifier()
	return err == nil && c.HasProbabilityDistribution()
}

func (p *Pipeline) NumberOfOutputs() int {
	if final, err := p.finalEstimator(); err == nil {
		if m, ok := final.(model.HasMultipleOutputs); ok {
			return m.NumberOfOutputs()
		}
	}
	return 1
}

// EncodeModel transforms the schema features and encodes the final
// estimator against the result.
func (p *Pipeline) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, errors.NewCapabilityCastError(p.TypeKey(), "Transformer", "Estimator")
	}
	transformers, err := p.transformers()
	if err != nil {
		return nil, err
	}
	features, err := encodeSteps(transformers, s.Features(), s.Encoder())
	if err != nil {
		return nil, err
	}
	return model.Encode(final, s.WithFeatures(features))
}

// EncodeFeatures runs every step, including a final estimator that is
// also a transformer.
func (p *Pipeline) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	transformers, err := p.transformers()
	if err != nil {
		return nil, err
	}
	final, err := p.finalEstimator()
	if err != nil {
		return nil, err
	}
	if final != nil {
		t, ok := final.(model.Transformer)
		if !ok {
			return nil, errors.NewCapabilityCastError(final.Object().TypeKey(), final.Kind().String(), "Transformer")
		}
		transformers = append(transformers, namedTransformer{name: "final", Transformer: t})
	}
	return encodeSteps(transformers, features, enc)
}

// encodeSteps threads features through transformers. A leading
// initializer given no features declares its own.
func encodeSteps(transformers []namedTransformer, features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	for i, t := range transformers {
		var err error
		if initializer, ok := t.Transformer.(model.Initializer); ok && i == 0 && len(features) == 0 {
			features, err = initializer.InitializeFeatures(enc)
		} else {
			features, err = t.EncodeFeatures(features, enc)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", t.name)
		}
		enc.Logger().Debug("Encoded pipeline step",
			log.StepKey, t.name,
			log.FeaturesKey, len(features),
		)
	}
	return features, nil
}
