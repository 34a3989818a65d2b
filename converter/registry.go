package converter

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/sklearn/chaid"
	"github.com/YuminosukeSato/skpmml/sklearn/cluster"
	"github.com/YuminosukeSato/skpmml/sklearn/compose"
	"github.com/YuminosukeSato/skpmml/sklearn/crossref"
	"github.com/YuminosukeSato/skpmml/sklearn/discriminant_analysis"
	"github.com/YuminosukeSato/skpmml/sklearn/dummy"
	"github.com/YuminosukeSato/skpmml/sklearn/ensemble"
	"github.com/YuminosukeSato/skpmml/sklearn/isotonic"
	"github.com/YuminosukeSato/skpmml/sklearn/lightgbm"
	"github.com/YuminosukeSato/skpmml/sklearn/linear_model"
	"github.com/YuminosukeSato/skpmml/sklearn/model_selection"
	"github.com/YuminosukeSato/skpmml/sklearn/neural_network"
	"github.com/YuminosukeSato/skpmml/sklearn/optbinning"
	"github.com/YuminosukeSato/skpmml/sklearn/pipeline"
	"github.com/YuminosukeSato/skpmml/sklearn/preprocessing"
	"github.com/YuminosukeSato/skpmml/sklearn/ruleset"
	"github.com/YuminosukeSato/skpmml/sklearn/tree"
)

// Registrations lists the Register function of every estimator package.
var Registrations = []func(*model.Registry){
	compose.Register,
	pipeline.Register,
	preprocessing.Register,
	linear_model.Register,
	tree.Register,
	ensemble.Register,
	dummy.Register,
	isotonic.Register,
	discriminant_analysis.Register,
	neural_network.Register,
	cluster.Register,
	model_selection.Register,
	crossref.Register,
	chaid.Register,
	ruleset.Register,
	optbinning.Register,
	lightgbm.Register,
}

// NewRegistry returns a registry knowing every supported estimator.
func NewRegistry() *model.Registry {
	r := model.NewRegistry()
	for _, register := range Registrations {
		register(r)
	}
	return r
}
