// Package ruleset encodes RuleSetClassifier, a first-hit list of
// (predicate, class) rules written as Python boolean expressions.
package ruleset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

type Classifier struct {
	model.ClassifierBase
}

func NewClassifier(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Classifier{ClassifierBase: model.NewClassifierBase(obj, r)}, nil
}

// HasProbabilityDistribution is false; a rule yields one class.
func (c *Classifier) HasProbabilityDistribution() bool {
	return false
}

type rule struct {
	predicate string
	score     string
}

func (c *Classifier) rules() ([]rule, error) {
	tuples, err := c.Object().GetTupleList("rules")
	if err != nil {
		return nil, err
	}
	out := make([]rule, len(tuples))
	for i, t := range tuples {
		if err := errors.CheckSize(c.TypeKey(), "rules["+strconv.Itoa(i)+"]", 2, len(t)); err != nil {
			return nil, err
		}
		predicate, ok := t[0].(string)
		if !ok {
			return nil, errors.NewAttributeTypeError(c.TypeKey(), "rules", "(str, str) tuples", "non-string predicate")
		}
		out[i] = rule{predicate: predicate, score: schema.FormatValue(t[1])}
	}
	return out, nil
}

func (c *Classifier) defaultScore() string {
	if v := c.Object().GetOptional("default_score"); v != nil {
		return schema.FormatValue(v)
	}
	return ""
}

// Classes returns the distinct rule scores and the default score, sorted
// case-insensitively.
func (c *Classifier) Classes() ([]any, error) {
	rules, err := c.rules()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var scores []string
	add := func(score string) {
		if !seen[score] {
			seen[score] = true
			scores = append(scores, score)
		}
	}
	if def := c.defaultScore(); def != "" {
		add(def)
	}
	for _, r := range rules {
		add(r.score)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return strings.ToLower(scores[i]) < strings.ToLower(scores[j])
	})
	out := make([]any, len(scores))
	for i, s := range scores {
		out[i] = s
	}
	return out, nil
}

func (c *Classifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	rules, err := c.rules()
	if err != nil {
		return nil, err
	}

	ruleSet := &pmml.RuleSet{
		RuleSelectionMethods: []*pmml.RuleSelectionMethod{{Criterion: pmml.CriterionFirstHit}},
	}
	if def := c.defaultScore(); def != "" {
		ruleSet.DefaultScore = def
		ruleSet.DefaultConfidence = pmml.Float(1)
	}
	for i, r := range rules {
		predicate, err := ParsePredicate(r.predicate, s.Features(), s.Encoder())
		if err != nil {
			return nil, errors.Wrapf(err, "%s: rule %d", c.TypeKey(), i)
		}
		ruleSet.Rules = append(ruleSet.Rules, &pmml.SimpleRule{Score: r.score, Predicate: predicate})
	}
	return &pmml.RuleSetModel{
		ModelBase: modelgraph.NewModelBase(pmml.MiningFunctionClassification, label),
		RuleSet:   ruleSet,
	}, nil
}

func Register(r *model.Registry) {
	r.Register("sklearn2pmml.ruleset", "RuleSetClassifier", NewClassifier)
}
