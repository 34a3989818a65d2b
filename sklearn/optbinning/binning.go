// Package optbinning encodes optbinning's OptimalBinning, BinningProcess
// and Scorecard. Binned columns carry one predicate per bin so that a
// scorecard can turn the bin points into Scorecard attributes.
package optbinning

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	dtypeNumerical   = "numerical"
	dtypeCategorical = "categorical"

	metricEventRate = "event_rate"
	metricWoE       = "woe"

	// bin value of the special and missing bins
	categoryOther = "0"
)

// OptimalBinning bins one column and maps each bin to its weight of
// evidence or event rate.
type OptimalBinning struct {
	model.Base
	// metric set by the owning BinningProcess transform parameters
	metric string
}

func NewOptimalBinning(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &OptimalBinning{Base: model.NewBase(obj, r)}, nil
}

func (b *OptimalBinning) NumberOfFeatures() int {
	return 1
}

func (b *OptimalBinning) getMetric() (string, error) {
	if !b.Object().Has("metric") {
		if b.metric != "" {
			return b.metric, nil
		}
		return metricWoE, nil
	}
	return b.Object().GetEnum("metric", metricEventRate, metricWoE)
}

// categoriesOut returns the bin values, including the trailing special and
// missing bins.
func (b *OptimalBinning) categoriesOut() ([]float64, error) {
	obj := b.Object()
	metric, err := b.getMetric()
	if err != nil {
		return nil, err
	}
	events, err := obj.GetNumberArray("_n_event")
	if err != nil {
		return nil, err
	}
	nonEvents, err := obj.GetNumberArray("_n_nonevent")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "_n_nonevent", len(events), len(nonEvents)); err != nil {
		return nil, err
	}
	constant := math.Log(floats.Sum(events) / floats.Sum(nonEvents))
	out := make([]float64, len(events))
	for i := range events {
		rate := events[i] / (events[i] + nonEvents[i])
		if metric == metricEventRate {
			out[i] = rate
		} else {
			out[i] = math.Log(1/rate-1) + constant
		}
	}
	return out, nil
}

func (b *OptimalBinning) specialCodes() ([]float64, error) {
	if b.Object().GetOptional("special_codes") == nil {
		return nil, nil
	}
	return b.Object().GetNumberArray("special_codes")
}

func (b *OptimalBinning) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := b.Object()
	if err := errors.CheckSize(b.TypeKey(), "features", 1, len(features)); err != nil {
		return nil, err
	}
	dtype, err := obj.GetEnum("dtype", dtypeNumerical, dtypeCategorical)
	if err != nil {
		return nil, err
	}
	splits, err := obj.GetNumberArray("_splits_optimal")
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(splits); i++ {
		if splits[i] <= splits[i-1] {
			return nil, errors.NewInvalidAttributeValueError(b.TypeKey(), "_splits_optimal", splits, "strictly increasing")
		}
	}
	values, err := b.categoriesOut()
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(b.TypeKey(), "categories", len(splits)+3, len(values)); err != nil {
		return nil, err
	}
	values = values[:len(values)-2]
	specialCodes, err := b.specialCodes()
	if err != nil {
		return nil, err
	}

	feature := features[0]
	var (
		expr  pmml.Expression
		field string
		dt    pmml.DataType
		bins  []schema.Bin
	)
	switch {
	case len(splits) == 0:
		field, dt = feature.Name(), feature.DataType()
		expr = pmml.NewApply("if",
			pmml.NewApply("isNotMissing", pmml.NewFieldRef(field)),
			pmml.NewConstant(values[0]),
			pmml.NewConstant(0))
		bins = []schema.Bin{{Label: pmml.FormatNumber(values[0]), Predicate: &pmml.SimplePredicate{Field: field, Operator: pmml.OpIsNotMissing}}}
	case dtype == dtypeNumerical:
		cf, err := schema.ToContinuousFeature(feature, enc)
		if err != nil {
			return nil, err
		}
		field, dt = cf.Name(), cf.DataType()
		expr, bins = numericalBinning(field, splits, values)
	default:
		categoriesIn, err := obj.GetList("_categories")
		if err != nil {
			return nil, err
		}
		names, categoryType := schema.ValuesOf(categoriesIn)
		cf, err := schema.ToCategoricalFeature(feature, enc, categoryType, names)
		if err != nil {
			return nil, err
		}
		field, dt = cf.Name(), cf.DataType()
		expr, bins = categoricalBinning(field, dt, splits, names, values)
	}

	if len(specialCodes) > 0 {
		codes := make([]pmml.Expression, 0, len(specialCodes)+1)
		labels := make([]string, len(specialCodes))
		codes = append(codes, pmml.NewFieldRef(field))
		for i, code := range specialCodes {
			codes = append(codes, pmml.NewConstant(code))
			labels[i] = pmml.FormatNumber(code)
		}
		isSpecial := pmml.NewApply("isIn", codes...)
		if len(splits) > 0 {
			isSpecial.MapMissingTo = categoryOther
		}
		expr = pmml.NewApply("if", isSpecial, pmml.NewConstant(0), expr)
		bins = append(bins, schema.Bin{Label: categoryOther, Predicate: modelgraph.ValuesPredicate(field, dt, labels)})
	} else {
		bins = append(bins, schema.Bin{Label: categoryOther})
	}
	bins = append(bins, schema.Bin{Label: categoryOther, Predicate: modelgraph.MissingPredicate(field)})

	name := modelgraph.FieldName("optBinning", field)
	if _, err := enc.CreateDerivedField(name, pmml.OpTypeCategorical, pmml.DataTypeDouble, expr); err != nil {
		return nil, err
	}
	enc.Logger().Debug("binned feature", log.FeaturesKey, name, "bins", len(bins))
	return []schema.Feature{schema.NewBinnedFeature(name, pmml.DataTypeDouble, bins)}, nil
}

// numericalBinning builds closed-open intervals between consecutive splits.
func numericalBinning(field string, splits, values []float64) (pmml.Expression, []schema.Bin) {
	discretize := &pmml.Discretize{Field: field, MapMissingTo: categoryOther, DataType: pmml.DataTypeDouble}
	var bins []schema.Bin
	for i := 0; i <= len(splits); i++ {
		interval := &pmml.Interval{Closure: pmml.ClosureClosedOpen}
		var predicates []pmml.Predicate
		if i > 0 {
			interval.LeftMargin = pmml.Float(splits[i-1])
			predicates = append(predicates, &pmml.SimplePredicate{Field: field, Operator: pmml.OpGreaterOrEqual, Value: pmml.FormatNumber(splits[i-1])})
		}
		if i < len(splits) {
			interval.RightMargin = pmml.Float(splits[i])
			predicates = append(predicates, &pmml.SimplePredicate{Field: field, Operator: pmml.OpLessThan, Value: pmml.FormatNumber(splits[i])})
		}
		label := pmml.FormatNumber(values[i])
		discretize.Bins = append(discretize.Bins, &pmml.DiscretizeBin{BinValue: label, Interval: interval})

		var predicate pmml.Predicate = predicates[0]
		if len(predicates) == 2 {
			predicate = &pmml.CompoundPredicate{BooleanOperator: pmml.BoolAnd, Predicates: predicates}
		}
		bins = append(bins, schema.Bin{Label: label, Predicate: predicate})
	}
	return discretize, bins
}

// categoricalBinning groups the ordered categories: split i ends the group
// at category index ceil(split).
func categoricalBinning(field string, dataType pmml.DataType, splits []float64, categories []string, values []float64) (pmml.Expression, []schema.Bin) {
	var inputs, outputs []string
	var bins []schema.Bin
	begin := 0
	for i := 0; i <= len(splits); i++ {
		end := len(categories)
		if i < len(splits) {
			end = int(math.Ceil(splits[i]))
		}
		if end > len(categories) {
			end = len(categories)
		}
		if end < begin {
			end = begin
		}
		group := categories[begin:end]
		label := pmml.FormatNumber(values[i])
		for _, c := range group {
			inputs = append(inputs, c)
			outputs = append(outputs, label)
		}
		var predicate pmml.Predicate = &pmml.False{}
		if len(group) > 0 {
			predicate = modelgraph.ValuesPredicate(field, dataType, group)
		}
		bins = append(bins, schema.Bin{Label: label, Predicate: predicate})
		begin = end
	}
	mv := pmml.NewMapValues(field, inputs, outputs)
	mv.MapMissingTo = categoryOther
	mv.DataType = pmml.DataTypeDouble
	return mv, bins
}

// BinningProcess bins the supported variables by name, each with its own
// OptimalBinning.
type BinningProcess struct {
	model.Base
}

func NewBinningProcess(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &BinningProcess{Base: model.NewBase(obj, r)}, nil
}

// NumberOfFeatures is -1; variables are selected by name.
func (p *BinningProcess) NumberOfFeatures() int {
	return -1
}

func (p *BinningProcess) InitializeFeatures(enc *schema.Encoder) ([]schema.Feature, error) {
	return p.EncodeFeatures(nil, enc)
}

func (p *BinningProcess) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	obj := p.Object()
	support, err := obj.GetBooleanArray("_support")
	if err != nil {
		return nil, err
	}
	names, err := obj.GetStringArray("variable_names")
	if err != nil {
		return nil, err
	}
	if err := errors.CheckSize(p.TypeKey(), "variable_names", len(support), len(names)); err != nil {
		return nil, err
	}
	binned, err := obj.GetDict("_binned_variables")
	if err != nil {
		return nil, err
	}
	var transformParams *store.Dict
	if obj.GetOptional("binning_transform_params") != nil {
		if transformParams, err = obj.GetDict("binning_transform_params"); err != nil {
			return nil, err
		}
	}

	var out []schema.Feature
	for i, name := range names {
		if !support[i] {
			continue
		}
		feature, err := model.SelectFeature(p.TypeKey(), name, features, enc)
		if err != nil {
			return nil, err
		}
		binning, err := p.binning(binned, name)
		if err != nil {
			return nil, err
		}
		if transformParams != nil {
			if params, ok := transformParams.Values[name].(*store.Dict); ok {
				if metric, ok := params.Values["metric"].(string); ok {
					binning.metric = metric
				}
			}
		}
		encoded, err := binning.EncodeFeatures([]schema.Feature{feature}, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", name)
		}
		out = append(out, encoded...)
	}
	return out, nil
}

func (p *BinningProcess) binning(binned *store.Dict, name string) (*OptimalBinning, error) {
	v, ok := binned.Get(name)
	if !ok {
		return nil, errors.NewAttributeMissingError(p.TypeKey(), "_binned_variables["+name+"]")
	}
	obj, ok := v.(*store.Object)
	if !ok {
		return nil, errors.NewAttributeTypeError(p.TypeKey(), "_binned_variables", "OptimalBinning", "non-object")
	}
	step, err := p.Registry().Construct(obj)
	if err != nil {
		return nil, err
	}
	binning, ok := step.(*OptimalBinning)
	if !ok {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), obj.TypeKey(), "OptimalBinning")
	}
	return binning, nil
}
