package ensemble

import (
	"strconv"

	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// stacking holds the fitted members, their stack methods and the final
// estimator, with dropped members removed.
type stacking struct {
	members     []model.Estimator
	methods     []string
	final       model.Estimator
	passthrough bool
}

func decodeStacking(b *model.Base) (*stacking, error) {
	obj := b.Object()
	values, err := obj.GetList("estimators_")
	if err != nil {
		return nil, err
	}
	methods, err := obj.GetStringArray("stack_method_")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "stack_method_", len(values), len(methods)); err != nil {
		return nil, err
	}

	st := &stacking{}
	for i, v := range values {
		if isDropped(v) {
			continue
		}
		memberObj, ok := v.(*store.Object)
		if !ok {
			return nil, errors.NewAttributeTypeError(b.TypeKey(), "estimators_", "list of objects", "value")
		}
		e, err := b.Registry().AsEstimator(memberObj)
		if err != nil {
			return nil, err
		}
		st.members = append(st.members, e)
		st.methods = append(st.methods, methods[i])
	}

	finalObj, err := obj.GetObject("final_estimator_")
	if err != nil {
		return nil, err
	}
	if st.final, err = b.Registry().AsEstimator(finalObj); err != nil {
		return nil, err
	}
	if st.passthrough, err = obj.GetOptionalBoolean("passthrough", false); err != nil {
		return nil, err
	}
	return st, nil
}

// StackingClassifier feeds member predictions to a final classifier.
type StackingClassifier struct {
	model.ClassifierBase
}

func NewStackingClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &StackingClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *StackingClassifier) HasProbabilityDistribution() bool {
	finalObj, err := c.Object().GetObject("final_estimator_")
	if err != nil {
		return false
	}
	final, err := c.Registry().AsClassifier(finalObj)
	return err == nil && final.HasProbabilityDistribution()
}

func (c *StackingClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	st, err := decodeStacking(&c.Base)
	if err != nil {
		return nil, err
	}
	export := func(index int, m pmml.Model, method string) ([]schema.Feature, error) {
		member := st.members[index]
		switch method {
		case "predict_proba":
			values := label.Values()
			// the first column of a binary problem is redundant
			if len(values) == 2 {
				values = values[1:]
			}
			features := make([]schema.Feature, len(values))
			for i, value := range values {
				name := modelgraph.FieldName(modelgraph.FieldProbability, strconv.Itoa(index), value)
				features[i] = ens.ExportProbability(m, name, value)
			}
			return features, nil
		case "predict":
			if member.Kind() == model.KindRegressor {
				return []schema.Feature{ens.ExportPrediction(m, modelgraph.FieldName(modelgraph.FieldPredict, strconv.Itoa(index)))}, nil
			}
		}
		return nil, errors.NewUnsupportedVariantError(member.Object().TypeKey(), "stack method "+method)
	}
	mm, err := ens.Stack(st.members, st.methods, export, st.final, st.passthrough, s)
	if err != nil {
		return nil, err
	}
	if c.HasProbabilityDistribution() {
		modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
	}
	return mm, nil
}

// StackingRegressor feeds member predictions to a final regressor.
type StackingRegressor struct {
	model.RegressorBase
}

func NewStackingRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &StackingRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *StackingRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	st, err := decodeStacking(&r.Base)
	if err != nil {
		return nil, err
	}
	export := func(index int, m pmml.Model, method string) ([]schema.Feature, error) {
		if method != "predict" {
			return nil, errors.NewUnsupportedVariantError(st.members[index].Object().TypeKey(), "stack method "+method)
		}
		return []schema.Feature{ens.ExportPrediction(m, modelgraph.FieldName(modelgraph.FieldPredict, strconv.Itoa(index)))}, nil
	}
	return ens.Stack(st.members, st.methods, export, st.final, st.passthrough, s)
}
