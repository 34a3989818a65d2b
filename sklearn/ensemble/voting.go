package ensemble

import (
	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	votingHard = "hard"
	votingSoft = "soft"
	dropped    = "drop"
)

// VotingClassifier averages member probabilities (soft voting) or counts
// member predictions (hard voting).
type VotingClassifier struct {
	model.ClassifierBase
}

func NewVotingClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &VotingClassifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

func (c *VotingClassifier) voting() (string, error) {
	return c.Object().GetEnum("voting", votingHard, votingSoft)
}

func (c *VotingClassifier) HasProbabilityDistribution() bool {
	voting, err := c.voting()
	return err == nil && voting == votingSoft
}

func (c *VotingClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	voting, err := c.voting()
	if err != nil {
		return nil, err
	}
	members, err := estimators(&c.Base, "estimators_")
	if err != nil {
		return nil, err
	}
	weights, err := votingWeights(&c.Base, len(members))
	if err != nil {
		return nil, err
	}

	method := pmml.MethodMajorityVote
	if voting == votingSoft {
		method = pmml.MethodAverage
		for _, e := range members {
			if mc, ok := e.(model.Classifier); !ok || !mc.HasProbabilityDistribution() {
				return nil, errors.NewCapabilityCastError(e.Object().TypeKey(), e.Kind().String(), "probabilistic Classifier")
			}
		}
	}
	models, err := ens.EncodeMembers(members, s.ToAnonymous())
	if err != nil {
		return nil, err
	}
	mm, err := ens.Compose(pmml.MiningFunctionClassification, label, method, models, weights)
	if err != nil {
		return nil, err
	}
	if voting == votingSoft {
		modelgraph.AddOutputFields(mm, modelgraph.ProbabilityFields(label)...)
	}
	return mm, nil
}

// VotingRegressor averages member predictions.
type VotingRegressor struct {
	model.RegressorBase
}

func NewVotingRegressor(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &VotingRegressor{RegressorBase: model.NewRegressorBase(obj, r)}, nil
}

func (r *VotingRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	members, err := estimators(&r.Base, "estimators_")
	if err != nil {
		return nil, err
	}
	weights, err := votingWeights(&r.Base, len(members))
	if err != nil {
		return nil, err
	}
	models, err := ens.EncodeMembers(members, s.ToAnonymous())
	if err != nil {
		return nil, err
	}
	return ens.Compose(pmml.MiningFunctionRegression, s.Label(), pmml.MethodAverage, models, weights)
}

// votingWeights returns the weights of the fitted members. Weights are
// given for every configured estimator, including dropped ones.
func votingWeights(b *model.Base, members int) ([]float64, error) {
	weights, err := b.Object().GetOptionalNumberArray("weights")
	if err != nil || weights == nil || len(weights) == members {
		return weights, err
	}
	steps, err := b.Object().GetTupleList("estimators")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "weights", len(steps), len(weights)); err != nil {
		return nil, err
	}
	var kept []float64
	for i, step := range steps {
		if len(step) == 2 && isDropped(step[1]) {
			continue
		}
		kept = append(kept, weights[i])
	}
	if err := errors.CheckSize(b.TypeKey(), "weights", members, len(kept)); err != nil {
		return nil, err
	}
	return kept, nil
}

func isDropped(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == dropped
}
