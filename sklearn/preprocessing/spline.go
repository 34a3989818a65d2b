package preprocessing

import (
	"strconv"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const (
	basisFunction  = "scipy.interpolate.B"
	splineFunction = "scipy.interpolate.BSpline"
)

// BSplineTransformer は scipy の BSpline を単一の入力列に適用する。
// 係数が 2 次元の場合は行ごとに 1 つの特徴量を出力する
type BSplineTransformer struct {
	model.Base
}

func NewBSplineTransformer(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &BSplineTransformer{Base: model.NewBase(obj, r)}, nil
}

func (bt *BSplineTransformer) NumberOfFeatures() int {
	return 1
}

func (bt *BSplineTransformer) EncodeFeatures(features []schema.Feature, enc *schema.Encoder) ([]schema.Feature, error) {
	if err := errors.CheckSize(bt.TypeKey(), "features", 1, len(features)); err != nil {
		return nil, err
	}
	spline, err := bt.Object().GetObject("bspline")
	if err != nil {
		return nil, err
	}
	t, err := spline.GetNumberArray("t")
	if err != nil {
		return nil, err
	}
	k, err := spline.GetInteger("k")
	if err != nil {
		return nil, err
	}
	n := len(t) - k - 1
	if k < 0 || n < 1 {
		return nil, errors.NewInvalidAttributeValueError(spline.TypeKey(), "k", k, "degree below "+strconv.Itoa(len(t)-1))
	}
	rows, err := coefficientRows(spline)
	if err != nil {
		return nil, err
	}

	cf, err := schema.ToContinuousFeature(features[0], enc)
	if err != nil {
		return nil, err
	}
	b := &bsplineBuilder{scope: cf.Name(), t: t, enc: enc, basis: map[[2]int]string{}}
	out := make([]schema.Feature, 0, len(rows))
	for row, c := range rows {
		if len(c) < n {
			return nil, errors.CheckSize(spline.TypeKey(), "c", n, len(c))
		}
		args := []string{cf.Name(), strconv.Itoa(k)}
		fieldArgs := []string{cf.Name()}
		if len(rows) > 1 {
			args = append(args, strconv.Itoa(row))
			fieldArgs = append(fieldArgs, strconv.Itoa(row))
		}
		fnName := modelgraph.FieldName(splineFunction, args...)
		if err := b.splineFunction(fnName, c[:n], k); err != nil {
			return nil, err
		}
		name := modelgraph.FieldName("bspline", fieldArgs...)
		expr := pmml.NewApply(fnName, pmml.NewFieldRef(cf.Name()))
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeDouble, expr); err != nil {
			return nil, err
		}
		out = append(out, schema.NewContinuousFeature(name, pmml.DataTypeDouble))
	}
	return out, nil
}

// coefficientRows splits c into one coefficient vector per output.
func coefficientRows(spline *store.Object) ([][]float64, error) {
	if a, err := spline.GetArray("c"); err == nil && a.Rank() == 2 {
		rows, cols, data, err := spline.GetMatrix("c")
		if err != nil {
			return nil, err
		}
		out := make([][]float64, rows)
		for i := range out {
			out[i] = data[i*cols : (i+1)*cols]
		}
		return out, nil
	}
	c, err := spline.GetNumberArray("c")
	if err != nil {
		return nil, err
	}
	return [][]float64{c}, nil
}

// bsplineBuilder defines the Cox-de Boor basis functions of one knot
// vector. Function names carry the input field name so that splines over
// different columns never collide.
type bsplineBuilder struct {
	scope string
	t     []float64
	enc   *schema.Encoder
	basis map[[2]int]string
}

func unaryFunction(name string, expr pmml.Expression) *pmml.DefineFunction {
	return &pmml.DefineFunction{
		Name:     name,
		OpType:   pmml.OpTypeContinuous,
		DataType: pmml.DataTypeDouble,
		ParameterFields: []*pmml.ParameterField{
			{Name: "x", OpType: pmml.OpTypeContinuous, DataType: pmml.DataTypeDouble},
		},
		Expression: expr,
	}
}

// basisFunction defines B(i, k) and everything it depends on, returning
// its name.
func (b *bsplineBuilder) basisFunction(i, k int) (string, error) {
	key := [2]int{i, k}
	if name, ok := b.basis[key]; ok {
		return name, nil
	}
	t := b.t
	x := func() pmml.Expression { return pmml.NewFieldRef("x") }

	var expr pmml.Expression
	if k == 0 {
		expr = pmml.NewConstant(0)
		if t[i] != t[i+1] {
			expr = pmml.NewApply("if",
				pmml.NewApply("and",
					pmml.NewApply("greaterOrEqual", x(), pmml.NewConstant(t[i])),
					pmml.NewApply("lessThan", x(), pmml.NewConstant(t[i+1]))),
				pmml.NewConstant(1), pmml.NewConstant(0))
		}
	} else {
		var terms []pmml.Expression
		if i+k < len(t) && t[i+k] != t[i] {
			lower, err := b.basisFunction(i, k-1)
			if err != nil {
				return "", err
			}
			ramp := pmml.NewApply("/", pmml.NewApply("-", x(), pmml.NewConstant(t[i])), pmml.NewConstant(t[i+k]-t[i]))
			terms = append(terms, pmml.NewApply("*", ramp, pmml.NewApply(lower, x())))
		}
		if i+k+1 < len(t) && t[i+k+1] != t[i+1] {
			upper, err := b.basisFunction(i+1, k-1)
			if err != nil {
				return "", err
			}
			ramp := pmml.NewApply("/", pmml.NewApply("-", pmml.NewConstant(t[i+k+1]), x()), pmml.NewConstant(t[i+k+1]-t[i+1]))
			terms = append(terms, pmml.NewApply("*", ramp, pmml.NewApply(upper, x())))
		}
		switch len(terms) {
		case 0:
			expr = pmml.NewConstant(0)
		case 1:
			expr = terms[0]
		default:
			expr = pmml.NewApply("+", terms...)
		}
	}

	name := modelgraph.FieldName(basisFunction, b.scope, strconv.Itoa(i), strconv.Itoa(k))
	if _, err := b.enc.DefineFunction(unaryFunction(name, expr)); err != nil {
		return "", err
	}
	b.basis[key] = name
	return name, nil
}

// splineFunction defines name(x) = sum(c[i] * B(i, k)(x)), leaving out zero
// terms and unit multipliers.
func (b *bsplineBuilder) splineFunction(name string, c []float64, k int) error {
	var terms []pmml.Expression
	for i, coef := range c {
		if coef == 0 {
			continue
		}
		basis, err := b.basisFunction(i, k)
		if err != nil {
			return err
		}
		var term pmml.Expression = pmml.NewApply(basis, pmml.NewFieldRef("x"))
		if coef != 1 {
			term = pmml.NewApply("*", pmml.NewConstant(coef), term)
		}
		terms = append(terms, term)
	}

	var expr pmml.Expression
	switch len(terms) {
	case 0:
		expr = pmml.NewConstant(0)
	case 1:
		expr = terms[0]
	default:
		expr = pmml.NewApply("sum", terms...)
	}
	_, err := b.enc.DefineFunction(unaryFunction(name, expr))
	return err
}
