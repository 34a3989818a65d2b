package preprocessing

import "github.com/YuminosukeSato/skpmml/core/model"

// Register はスケーラ、エンコーダ、欠損値補完、B スプラインを r に登録する
func Register(r *model.Registry) {
	r.Register("sklearn.preprocessing", "StandardScaler", NewStandardScaler)
	r.Register("sklearn.preprocessing", "MinMaxScaler", NewMinMaxScaler)
	r.Register("sklearn.preprocessing", "MaxAbsScaler", NewMaxAbsScaler)
	r.Register("sklearn.preprocessing", "RobustScaler", NewRobustScaler)
	r.Register("sklearn.preprocessing", "Binarizer", NewBinarizer)
	r.Register("sklearn.preprocessing", "OneHotEncoder", NewOneHotEncoder)
	r.Register("sklearn.impute", "SimpleImputer", NewSimpleImputer)
	r.Register("sklearn2pmml.preprocessing", "BSplineTransformer", NewBSplineTransformer)
}
