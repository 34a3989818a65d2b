package ensemble

import "github.com/YuminosukeSato/skpmml/core/model"

// Register adds the ensemble estimators and the legacy gradient boosting
// init estimators to r.
func Register(r *model.Registry) {
	r.Register(module, "RandomForestClassifier", NewForestClassifier)
	r.Register(module, "ExtraTreesClassifier", NewForestClassifier)
	r.Register(module, "RandomForestRegressor", NewForestRegressor)
	r.Register(module, "ExtraTreesRegressor", NewForestRegressor)
	r.Register(module, "BaggingClassifier", NewBaggingClassifier)
	r.Register(module, "BaggingRegressor", NewBaggingRegressor)
	r.Register(module, "GradientBoostingClassifier", NewGradientBoostingClassifier)
	r.Register(module, "GradientBoostingRegressor", NewGradientBoostingRegressor)
	r.Register(module, "IsolationForest", NewIsolationForest)
	r.Register(module, "VotingClassifier", NewVotingClassifier)
	r.Register(module, "VotingRegressor", NewVotingRegressor)
	r.Register(module, "StackingClassifier", NewStackingClassifier)
	r.Register(module, "StackingRegressor", NewStackingRegressor)
	registerInitEstimators(r)
}
