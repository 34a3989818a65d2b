package model

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Encode は推定器をスキーマに対してエンコードする。
// ラベル検査、スキーマ調整、モデル構築、モデル後処理、特徴量重要度の記録の順に行う。
func Encode(e Estimator, s *schema.Schema) (pmml.Model, error) {
	obj := e.Object()
	if err := checkLabel(e, s); err != nil {
		return nil, err
	}
	if n := e.NumberOfFeatures(); n >= 0 {
		if err := s.CheckFeatures(obj.TypeKey(), n); err != nil {
			return nil, err
		}
	}

	if c, ok := e.(SchemaConfigurer); ok {
		configured, err := c.ConfigureSchema(s)
		if err != nil {
			return nil, err
		}
		s = configured
	}

	s.Encoder().Logger().Debug("Encoding estimator",
		log.EstimatorKey, obj.TypeKey(),
		log.FeaturesKey, s.NumberOfFeatures(),
	)

	m, err := e.EncodeModel(s)
	if err != nil {
		return nil, errors.NewModelError("encode", obj.TypeKey(), err)
	}

	if name, ok := obj.GetOptional("pmml_name_").(string); ok && name != "" {
		m.Base().ModelName = name
	}

	if c, ok := e.(ModelConfigurer); ok {
		configured, err := c.ConfigureModel(m, s)
		if err != nil {
			return nil, err
		}
		m = configured
	}

	if h, ok := e.(HasFeatureImportances); ok {
		importances, err := h.FeatureImportances()
		if err != nil {
			return nil, err
		}
		if importances != nil {
			if err := errors.CheckSize(obj.TypeKey(), "feature_importances_", s.NumberOfFeatures(), len(importances)); err != nil {
				return nil, err
			}
			for i, f := range s.Features() {
				s.Encoder().AddFeatureImportance(m, f, importances[i])
			}
		}
	}
	return m, nil
}

func checkLabel(e Estimator, s *schema.Schema) error {
	switch e.Kind() {
	case KindClassifier:
		label, err := s.CategoricalLabel()
		if err != nil {
			return errors.NewCapabilityCastError(e.Object().TypeKey(), "schema without categorical label", "Classifier schema")
		}
		c, ok := e.(Classifier)
		if !ok {
			return nil
		}
		classes, err := c.Classes()
		if err != nil {
			return err
		}
		return errors.CheckSize(e.Object().TypeKey(), "classes", len(classes), label.Size())
	case KindRegressor:
		switch s.Label().(type) {
		case *schema.ContinuousLabel, *schema.MultiLabel:
			return nil
		}
		return errors.NewCapabilityCastError(e.Object().TypeKey(), "schema without continuous label", "Regressor schema")
	}
	return nil
}

// EncodeLabel は最終推定器の種類に応じたラベルを作り、対応するデータフィールドを登録する。
// names はターゲット名で、空の場合は "y" (多出力では "y1".."yN") を使う。
func EncodeLabel(e Estimator, names []string, enc *schema.Encoder) (schema.Label, error) {
	switch e.Kind() {
	case KindClassifier:
		c, ok := e.(Classifier)
		if !ok {
			return nil, errors.NewCapabilityCastError(e.Object().TypeKey(), e.Kind().String(), "Classifier")
		}
		classes, err := c.Classes()
		if err != nil {
			return nil, err
		}
		values, dataType := schema.ValuesOf(classes)
		name := targetName(names, 0, 1)
		enc.CreateDataField(name, pmml.OpTypeCategorical, dataType, values)
		return schema.NewCategoricalLabel(name, dataType, values), nil
	case KindRegressor:
		outputs := 1
		if m, ok := e.(HasMultipleOutputs); ok {
			outputs = m.NumberOfOutputs()
		}
		if outputs <= 1 {
			name := targetName(names, 0, 1)
			enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
			return schema.NewContinuousLabel(name, pmml.DataTypeDouble), nil
		}
		labels := make([]schema.Label, outputs)
		for i := range labels {
			name := targetName(names, i, outputs)
			enc.CreateDataField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, nil)
			labels[i] = schema.NewContinuousLabel(name, pmml.DataTypeDouble)
		}
		return schema.NewMultiLabel(labels), nil
	}
	return nil, nil
}

func targetName(names []string, i, n int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	if n == 1 {
		return "y"
	}
	return "y" + strconv.Itoa(i+1)
}
