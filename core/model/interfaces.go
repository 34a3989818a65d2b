package model

import (
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// HasEstimatorEnsemble はメンバー推定器を持つアンサンブル
type HasEstimatorEnsemble[T Step] interface {
	Estimators() ([]T, error)
}

// HasFeatureNamesIn は feature_names_in_ を持つ推定器
type HasFeatureNamesIn interface {
	FeatureNamesIn() ([]string, error)
}

// HasFeatureImportances は feature_importances_ を持つ推定器
type HasFeatureImportances interface {
	FeatureImportances() ([]float64, error)
}

// HasPriorProbability はクラス事前確率を持つ推定器（勾配ブースティングの初期推定器）
type HasPriorProbability interface {
	PriorProbability(index int) (float64, error)
}

// HasDefaultValue は定数予測値を持つ推定器（勾配ブースティングの初期推定器）
type HasDefaultValue interface {
	DefaultValue() (float64, error)
}

// HasMultipleOutputs は多出力回帰器
type HasMultipleOutputs interface {
	NumberOfOutputs() int
}

// HasTree は単一の決定木を持つ推定器
type HasTree interface {
	Estimator
	// EncodeTree はスキーマに対する TreeModel を構築する
	EncodeTree(s *schema.Schema) (*pmml.TreeModel, error)
}

// SchemaConfigurer はエンコード前にスキーマを調整する
type SchemaConfigurer interface {
	ConfigureSchema(s *schema.Schema) (*schema.Schema, error)
}

// ModelConfigurer はエンコード後にモデルを調整する純粋な後処理
type ModelConfigurer interface {
	ConfigureModel(m pmml.Model, s *schema.Schema) (pmml.Model, error)
}

// HasActiveFields は入力列名を明示するパイプライン (PMMLPipeline.active_fields)
type HasActiveFields interface {
	ActiveFields() ([]string, error)
}

// HasTargetFields はターゲット列名を明示するパイプライン
type HasTargetFields interface {
	TargetFields() ([]string, error)
}

// HasHead は最初に入力列を受け取るステップを返す合成ステップ
type HasHead interface {
	Head() (Step, error)
}
