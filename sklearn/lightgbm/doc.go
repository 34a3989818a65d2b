// Package lightgbm encodes the scikit-learn wrappers of LightGBM
// (LGBMClassifier, LGBMRegressor, LGBMRanker) as PMML tree ensembles.
//
// The trees are read from the text dump that a pickled booster keeps under
// _Booster.handle, the same format Booster.model_to_string writes:
//
//	tree
//	version=v4
//	num_class=1
//	num_tree_per_iteration=1
//	max_feature_idx=1
//	objective=binary sigmoid:1
//	feature_names=x1 x2
//	feature_infos=[0:10] 0:1:2
//	tree_sizes=...
//
//	Tree=0
//	num_leaves=3
//	...
//
// Each tree becomes a regression TreeModel over the raw score. The trees of
// one score column are summed (averaged for random forest boosting) and the
// columns are combined by the objective's link: a scaled logistic for
// binary objectives, softmax for multiclass, exp for log-link regression.
//
// Numeric splits send x <= threshold left; the learned missing-value
// direction becomes the default child of each node. Categorical splits
// decode the category bitset of the node into an isIn predicate. Category
// codes are mapped to the pandas categories recorded in the dump when there
// are any.
//
// Encoding can stop early: the num_iteration option, else best_iteration_,
// limits the number of boosting rounds.
package lightgbm
