package lightgbm

import (
	"strings"

	ens "github.com/YuminosukeSato/skpmml/core/ensemble"
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const module = "lightgbm.sklearn"

// FieldRawScore exposes the summed tree output of a regressor whose
// objective applies a link function.
const FieldRawScore = "lgbmValue"

// Register adds the scikit-learn wrappers of LightGBM to r.
func Register(r *model.Registry) {
	r.Register(module, "LGBMRegressor", NewLGBMRegressor)
	r.Register(module, "LGBMRanker", NewLGBMRegressor)
	r.Register(module, "LGBMClassifier", NewLGBMClassifier)
}

// boosterBase reads the booster dump of a scikit-learn wrapper once.
type boosterBase struct {
	base    *model.Base
	booster *Booster
}

func (b *boosterBase) Booster() (*Booster, error) {
	if b.booster != nil {
		return b.booster, nil
	}
	obj, err := b.base.Object().GetObject("_Booster")
	if err != nil {
		return nil, err
	}
	handle, err := obj.GetString("handle")
	if err != nil {
		return nil, err
	}
	booster, err := ParseBooster(strings.NewReader(handle))
	if err != nil {
		return nil, errors.Wrapf(err, "%s _Booster", b.base.TypeKey())
	}
	b.booster = booster
	return booster, nil
}

func (b *boosterBase) NumberOfFeatures() int {
	if booster, err := b.Booster(); err == nil {
		return booster.NumFeatures()
	}
	if n := b.base.NumberOfFeatures(); n >= 0 {
		return n
	}
	if n, err := b.base.Object().GetInteger("_n_features"); err == nil {
		return n
	}
	return -1
}

// FeatureImportances は feature_importances セクションの分割回数を特徴量順に返す
func (b *boosterBase) FeatureImportances() ([]float64, error) {
	booster, err := b.Booster()
	if err != nil {
		return nil, err
	}
	if booster.Importances == nil || len(booster.FeatureNames) != booster.NumFeatures() {
		return nil, nil
	}
	out := make([]float64, len(booster.FeatureNames))
	for i, name := range booster.FeatureNames {
		out[i] = booster.Importances[name]
	}
	return out, nil
}

// iterations returns how many boosting rounds to encode: the num_iteration
// option (or the conversion-wide default), else best_iteration_ when early
// stopping recorded one, else all.
func (b *boosterBase) iterations(booster *Booster, enc *schema.Encoder) (int, error) {
	total := len(booster.Trees) / booster.NumTreePerIteration
	n := 0
	switch v := b.base.Option("num_iteration", enc.Options.NumIteration).(type) {
	case int:
		n = v
	default:
		return 0, errors.NewAttributeTypeError(b.base.TypeKey(), "num_iteration", "int", schema.FormatValue(v))
	}
	if n <= 0 {
		for _, name := range []string{"best_iteration_", "_best_iteration"} {
			if b.base.Object().GetOptional(name) == nil {
				continue
			}
			best, err := b.base.Object().GetInteger(name)
			if err != nil {
				return 0, err
			}
			n = best
			break
		}
	}
	if n <= 0 || n > total {
		n = total
	}
	return n, nil
}

// encodeColumns builds one tree ensemble per score column. Tree i of the
// dump belongs to column i mod columns.
func (b *boosterBase) encodeColumns(booster *Booster, columns int, s *schema.Schema) ([]*pmml.MiningModel, error) {
	if err := errors.CheckSize(b.base.TypeKey(), "num_tree_per_iteration", columns, booster.NumTreePerIteration); err != nil {
		return nil, err
	}
	n, err := b.iterations(booster, s.Encoder())
	if err != nil {
		return nil, err
	}
	if n < len(booster.Trees)/columns {
		s.Encoder().Logger().Debug("Truncating boosting rounds", log.EstimatorKey, b.base.TypeKey(), "iterations", n)
	}
	method := pmml.MethodSum
	if booster.AverageOutput {
		method = pmml.MethodAverage
	}

	resolver := newFeatureResolver(booster, s)
	segmentSchema := s.ToAnonymous()
	out := make([]*pmml.MiningModel, columns)
	for k := 0; k < columns; k++ {
		members := make([]pmml.Model, 0, n)
		for i := 0; i < n; i++ {
			tm, err := encodeTree(booster.Trees[i*columns+k], resolver, segmentSchema)
			if err != nil {
				return nil, errors.Wrapf(err, "tree %d", i*columns+k)
			}
			members = append(members, tm)
		}
		mm, err := ens.Compose(pmml.MiningFunctionRegression, s.Label(), method, members, nil)
		if err != nil {
			return nil, err
		}
		out[k] = mm
	}
	return out, nil
}

// LGBMRegressor encodes the booster of a regressor or ranker.
type LGBMRegressor struct {
	model.RegressorBase
	boosterBase
}

func NewLGBMRegressor(obj *store.Object, reg *model.Registry) (model.Step, error) {
	r := &LGBMRegressor{RegressorBase: model.NewRegressorBase(obj, reg)}
	r.boosterBase.base = &r.Base
	return r, nil
}

func (r *LGBMRegressor) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	booster, err := r.Booster()
	if err != nil {
		return nil, err
	}
	norm, err := booster.Objective.RegressionNormalization()
	if err != nil {
		return nil, err
	}
	if norm == pmml.NormalizationNone {
		models, err := r.encodeColumns(booster, 1, s)
		if err != nil {
			return nil, err
		}
		return models[0], nil
	}

	models, err := r.encodeColumns(booster, 1, s.ToAnonymousRegressor(pmml.DataTypeDouble))
	if err != nil {
		return nil, err
	}
	sum := models[0]
	modelgraph.AddOutputFields(sum, modelgraph.PredictedField(FieldRawScore, pmml.OpTypeContinuous, pmml.DataTypeDouble))
	final := &pmml.RegressionModel{
		ModelBase:           modelgraph.NewModelBase(pmml.MiningFunctionRegression, s.Label()),
		NormalizationMethod: norm,
		RegressionTables: []*pmml.RegressionTable{{
			NumericPredictors: []*pmml.NumericPredictor{{Name: FieldRawScore, Coefficient: 1}},
		}},
	}
	return ens.Chain(pmml.MiningFunctionRegression, s.Label(), []pmml.Model{sum, final}, pmml.MissingPredictionReturnMissing)
}

// LGBMClassifier encodes the booster of a classifier: a logistic model over
// a single score column for binary objectives, softmax over one column per
// class for multiclass ones.
type LGBMClassifier struct {
	model.ClassifierBase
	boosterBase
}

func NewLGBMClassifier(obj *store.Object, reg *model.Registry) (model.Step, error) {
	c := &LGBMClassifier{ClassifierBase: model.NewClassifierBase(obj, reg)}
	c.boosterBase.base = &c.Base
	return c, nil
}

// Classes は classes_ (古い版は _classes) を返す
func (c *LGBMClassifier) Classes() ([]any, error) {
	if c.Object().GetOptional("classes_") == nil && c.Object().Has("_classes") {
		return c.Object().GetList("_classes")
	}
	return c.Object().GetList("classes_")
}

func (c *LGBMClassifier) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	booster, err := c.Booster()
	if err != nil {
		return nil, err
	}
	label, err := s.CategoricalLabel()
	if err != nil {
		return nil, err
	}
	objective := booster.Objective
	anonymous := s.ToAnonymousRegressor(pmml.DataTypeDouble)

	switch {
	case objective.IsBinary():
		if err := errors.CheckSize(c.TypeKey(), "classes", 2, label.Size()); err != nil {
			return nil, err
		}
		models, err := c.encodeColumns(booster, 1, anonymous)
		if err != nil {
			return nil, err
		}
		field := modelgraph.FieldName(modelgraph.FieldDecisionFunction, label.Value(1))
		modelgraph.AddOutputFields(models[0], modelgraph.PredictedField(field, pmml.OpTypeContinuous, pmml.DataTypeDouble))
		return ens.BinaryClassification(models[0], field, objective.Sigmoid, pmml.NormalizationLogit, true, s)
	case objective.IsMulticlass():
		if err := errors.CheckSize(c.TypeKey(), "num_class", label.Size(), booster.NumClass); err != nil {
			return nil, err
		}
		models, err := c.encodeColumns(booster, label.Size(), anonymous)
		if err != nil {
			return nil, err
		}
		members := make([]pmml.Model, len(models))
		fields := make([]string, len(models))
		for k, m := range models {
			fields[k] = modelgraph.FieldName(modelgraph.FieldDecisionFunction, label.Value(k))
			modelgraph.AddOutputFields(m, modelgraph.PredictedField(fields[k], pmml.OpTypeContinuous, pmml.DataTypeDouble))
			members[k] = m
		}
		return ens.Classification(members, fields, pmml.NormalizationSoftmax, true, s)
	}
	return nil, errors.NewUnsupportedVariantError(c.TypeKey(), "objective "+objective.Name)
}
