// Package linear_model encodes scikit-learn linear classifiers and
// regressors as PMML RegressionModel elements.
package linear_model

import "github.com/YuminosukeSato/skpmml/core/model"

const (
	module    = "sklearn.linear_model"
	svmModule = "sklearn.svm"
)

// Register adds the linear estimators to r.
func Register(r *model.Registry) {
	for _, name := range []string{
		"LinearRegression", "Ridge", "RidgeCV", "Lasso", "LassoCV", "LassoLars", "LassoLarsCV",
		"ElasticNet", "ElasticNetCV", "Lars", "LarsCV", "OrthogonalMatchingPursuit",
		"BayesianRidge", "ARDRegression", "SGDRegressor", "HuberRegressor", "TheilSenRegressor",
		"PassiveAggressiveRegressor", "QuantileRegressor",
	} {
		r.Register(module, name, NewLinearRegressor)
	}
	r.Register(svmModule, "LinearSVR", NewLinearRegressor)

	for _, name := range []string{"RidgeClassifier", "RidgeClassifierCV", "Perceptron", "PassiveAggressiveClassifier"} {
		r.Register(module, name, NewLinearClassifier)
	}
	r.Register(svmModule, "LinearSVC", NewLinearClassifier)
	r.Register(module, "SGDClassifier", NewSGDClassifier)
	r.Register(module, "LogisticRegression", NewLogisticRegression)
	r.Register(module, "LogisticRegressionCV", NewLogisticRegression)
}
