package model

import (
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Base は全てのステップの基底となる構造体
type Base struct {
	obj      *store.Object
	registry *Registry
	resolver *version.Resolver
}

// NewBase はオブジェクトとレジストリからBaseを作成する
func NewBase(obj *store.Object, registry *Registry) Base {
	v, _ := obj.GetOptional("_sklearn_version").(string)
	return Base{obj: obj, registry: registry, resolver: version.NewResolver(obj, v)}
}

// Object は元の永続化オブジェクトを返す
func (b *Base) Object() *store.Object {
	return b.obj
}

// Registry はネストした推定器の構築に使うレジストリを返す
func (b *Base) Registry() *Registry {
	return b.registry
}

// TypeKey はエラーメッセージで使う型キーを返す
func (b *Base) TypeKey() string {
	return b.obj.TypeKey()
}

// SkLearnVersion は _sklearn_version を返す。記録がなければ空文字列
func (b *Base) SkLearnVersion() string {
	v, _ := b.obj.GetOptional("_sklearn_version").(string)
	return v
}

// Version はバージョン分岐の判定器を返す
func (b *Base) Version() *version.Resolver {
	return b.resolver
}

// Option は pmml_options_ から変換オプションを読む
func (b *Base) Option(name string, def any) any {
	options, ok := b.obj.GetOptional("pmml_options_").(*store.Dict)
	if !ok {
		return def
	}
	if v, ok := options.Get(name); ok && v != nil {
		return v
	}
	return def
}

// NumberOfFeatures は n_features_in_ (旧 n_features_) を返す。不明な場合は -1
func (b *Base) NumberOfFeatures() int {
	for _, name := range []string{"n_features_in_", "n_features_"} {
		if b.obj.GetOptional(name) != nil {
			if n, err := b.obj.GetInteger(name); err == nil {
				return n
			}
		}
	}
	return -1
}

// FeatureNamesIn は feature_names_in_ を返す。記録がなければ nil
func (b *Base) FeatureNamesIn() ([]string, error) {
	if b.obj.GetOptional("feature_names_in_") == nil {
		return nil, nil
	}
	return b.obj.GetStringArray("feature_names_in_")
}

// ClassifierBase は classes_ を持つ分類器の共通実装
type ClassifierBase struct {
	Base
}

// NewClassifierBase はClassifierBaseを作成する
func NewClassifierBase(obj *store.Object, registry *Registry) ClassifierBase {
	return ClassifierBase{Base: NewBase(obj, registry)}
}

func (c *ClassifierBase) Kind() Kind {
	return KindClassifier
}

func (c *ClassifierBase) MiningFunction() pmml.MiningFunction {
	return pmml.MiningFunctionClassification
}

// Classes は classes_ を返す
func (c *ClassifierBase) Classes() ([]any, error) {
	return c.obj.GetList("classes_")
}

// HasProbabilityDistribution は predict_proba を持つかどうか。既定は true
func (c *ClassifierBase) HasProbabilityDistribution() bool {
	return true
}

// RegressorBase は回帰器の共通実装
type RegressorBase struct {
	Base
}

// NewRegressorBase はRegressorBaseを作成する
func NewRegressorBase(obj *store.Object, registry *Registry) RegressorBase {
	return RegressorBase{Base: NewBase(obj, registry)}
}

func (r *RegressorBase) Kind() Kind {
	return KindRegressor
}

func (r *RegressorBase) MiningFunction() pmml.MiningFunction {
	return pmml.MiningFunctionRegression
}
