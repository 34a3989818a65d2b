// Package ensemble encodes the scikit-learn ensembles: random forests and
// extra trees, bagging, gradient boosting, isolation forests, voting and
// stacking. Member estimators are constructed through the registry and
// composed with core/ensemble.
package ensemble

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
	"github.com/YuminosukeSato/skpmml/sklearn/tree"
)

const module = "sklearn.ensemble"

// estimators constructs every member listed under name.
func estimators(b *model.Base, name string) ([]model.Estimator, error) {
	objs, err := b.Object().GetObjectList(name)
	if err != nil {
		return nil, err
	}
	out := make([]model.Estimator, len(objs))
	for i, obj := range objs {
		e, err := b.Registry().AsEstimator(obj)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// trees decodes the node tables of tree members listed under name. Members
// must be registered tree estimators.
func trees(b *model.Base, name string) ([]*tree.Tree, error) {
	objs, err := b.Object().GetObjectList(name)
	if err != nil {
		return nil, err
	}
	return decodeTrees(b, objs)
}

func decodeTrees(b *model.Base, objs []*store.Object) ([]*tree.Tree, error) {
	out := make([]*tree.Tree, len(objs))
	for i, obj := range objs {
		e, err := b.Registry().AsEstimator(obj)
		if err != nil {
			return nil, err
		}
		if _, ok := e.(model.HasTree); !ok {
			return nil, errors.NewCapabilityCastError(obj.TypeKey(), e.Kind().String(), "HasTree")
		}
		member := model.NewBase(obj, b.Registry())
		t, err := tree.DecodeTree(&member)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// featureSubsets reads estimators_features_ and checks every index against
// the n features of the ensemble.
func featureSubsets(b *model.Base, members, n int) ([][]int, error) {
	subsets, err := b.Object().GetIntegerArrayList("estimators_features_")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "estimators_features_", members, len(subsets)); err != nil {
		return nil, err
	}
	for _, subset := range subsets {
		for _, index := range subset {
			if index < 0 || index >= n {
				return nil, errors.NewInvalidAttributeValueError(b.TypeKey(), "estimators_features_", index, "[0, "+strconv.Itoa(n)+")")
			}
		}
	}
	return subsets, nil
}

// encodeTrees encodes each tree against s with the options of the
// ensemble. When subsets is not nil, tree i sees only the features
// subsets[i].
func encodeTrees(b *model.Base, members []*tree.Tree, fn pmml.MiningFunction, s *schema.Schema, subsets [][]int, opts tree.Options) ([]pmml.Model, error) {
	models := make([]pmml.Model, len(members))
	for i, t := range members {
		memberSchema := s
		if subsets != nil {
			memberSchema = s.SubSchema(subsets[i])
		}
		m, err := tree.Encode(t, fn, memberSchema, opts)
		if err != nil {
			return nil, errors.NewModelError("encode member "+strconv.Itoa(i), b.TypeKey(), err)
		}
		models[i] = m
	}
	return models, nil
}
