// Package model defines the capability interfaces of encodable estimators
// and transformers, the registry that constructs them from persisted
// objects, and the Encode driver shared by all estimators.
package model

import (
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Kind は推定器の能力ファミリーを表す
type Kind int

const (
	KindTransformer Kind = iota
	KindClassifier
	KindRegressor
	KindClusterer
	KindOutlierDetector
)

func (k Kind) String() string {
	switch k {
	case KindTransformer:
		return "Transformer"
	case KindClassifier:
		return "Classifier"
	case KindRegressor:
		return "Regressor"
	case KindClusterer:
		return "Clusterer"
	case KindOutlierDetector:
		return "OutlierDetector"
	default:
		return "Unknown"
	}
}

// Step はレジストリが構築する全てのオブジェクトの共通インターフェース
type Step interface {
	// Object は元の永続化オブジェクトを返す
	Object() *store.Object
}

// Estimator はPMMLモデルにエンコード可能な学習済み推定器のインターフェース
type Estimator interface {
	Step
	// Kind は能力ファミリーを返す
	Kind() Kind
	// MiningFunction はPMMLのfunctionNameを返す
	MiningFunction() pmml.MiningFunction
	// NumberOfFeatures は入力特徴量数を返す。不明な場合は -1
	NumberOfFeatures() int
	// EncodeModel はスキーマに対するモデルグラフを構築する
	EncodeModel(s *schema.Schema) (pmml.Model, error)
}

// Classifier は分類器のインターフェース
type Classifier interface {
	Estimator
	// Classes は学習されたクラスラベルを推定器の順序で返す
	Classes() ([]any, error)
	// HasProbabilityDistribution は確率出力を持つかどうか
	HasProbabilityDistribution() bool
}

// Transformer は特徴量を変換するステップのインターフェース
type Transformer interface {
	Step
	// NumberOfFeatures は入力特徴量数を返す。不明な場合は -1
	NumberOfFeatures() int
	// EncodeFeatures は入力特徴量を出力特徴量に変換する
	EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error)
}
