package compose

import "github.com/YuminosukeSato/skpmml/core/model"

// Register adds ColumnTransformer and the keyword steps to r.
func Register(r *model.Registry) {
	r.Register("sklearn.compose", "ColumnTransformer", NewColumnTransformer)
	r.RegisterKeyword(KeywordDrop, NewDrop)
	r.RegisterKeyword(KeywordPassThrough, NewPassThrough)
}
