package model

import (
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
)

// Initializer は入力特徴量なしで特徴量を生成できるステップ
type Initializer interface {
	Step
	InitializeFeatures(enc *schema.Encoder) ([]schema.Feature, error)
}

// KeywordConstructor は "drop" / "passthrough" のような文字列キーワードから変換器を作る
type KeywordConstructor func() Transformer

// NewKeywordObject は文字列キーワードを表す永続化オブジェクトを作る
func NewKeywordObject(keyword string) *store.Object {
	return store.NewObject("", keyword, nil)
}
