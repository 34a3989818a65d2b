package optbinning

import (
	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Scorecard bins its inputs with binning_process_ and then either delegates
// to estimator_ or, when scaled, emits the per-bin points as a PMML
// Scorecard.
type Scorecard struct {
	model.Base
}

func NewScorecard(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &Scorecard{Base: model.NewBase(obj, r)}, nil
}

func (sc *Scorecard) estimator() (model.Estimator, error) {
	obj, err := sc.Object().GetObject("estimator_")
	if err != nil {
		return nil, err
	}
	return sc.Registry().AsEstimator(obj)
}

func (sc *Scorecard) binningProcess() (*BinningProcess, error) {
	obj, err := sc.Object().GetObject("binning_process_")
	if err != nil {
		return nil, err
	}
	step, err := sc.Registry().Construct(obj)
	if err != nil {
		return nil, err
	}
	bp, ok := step.(*BinningProcess)
	if !ok {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), obj.TypeKey(), "BinningProcess")
	}
	return bp, nil
}

// Head returns the binning process, which declares the input columns it
// selects.
func (sc *Scorecard) Head() (model.Step, error) {
	return sc.binningProcess()
}

func (sc *Scorecard) Kind() model.Kind {
	e, err := sc.estimator()
	if err != nil {
		return model.KindRegressor
	}
	return e.Kind()
}

func (sc *Scorecard) MiningFunction() pmml.MiningFunction {
	e, err := sc.estimator()
	if err != nil {
		return pmml.MiningFunctionRegression
	}
	return e.MiningFunction()
}

func (sc *Scorecard) Classes() ([]any, error) {
	obj, err := sc.Object().GetObject("estimator_")
	if err != nil {
		return nil, err
	}
	c, err := sc.Registry().AsClassifier(obj)
	if err != nil {
		return nil, err
	}
	return c.Classes()
}

func (sc *Scorecard) HasProbabilityDistribution() bool {
	e, err := sc.estimator()
	if err != nil {
		return false
	}
	c, ok := e.(model.Classifier)
	return ok && c.HasProbabilityDistribution()
}

// NumberOfFeatures is -1; the binning process selects its columns by name.
func (sc *Scorecard) NumberOfFeatures() int {
	return -1
}

func (sc *Scorecard) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	bp, err := sc.binningProcess()
	if err != nil {
		return nil, err
	}
	features, err := bp.EncodeFeatures(s.Features(), s.Encoder())
	if err != nil {
		return nil, err
	}
	s = s.WithFeatures(features)

	e, err := sc.estimator()
	if err != nil {
		return nil, err
	}
	scaling, err := sc.Object().GetOptionalString("scaling_method")
	if err != nil {
		return nil, err
	}
	if scaling == "" {
		return model.Encode(e, s)
	}
	if e.Kind() != model.KindRegressor {
		return nil, errors.NewUnsupportedVariantError(sc.TypeKey(), "scaling_method="+scaling+" with a "+e.Kind().String())
	}
	return sc.encodeScorecard(s)
}

// encodeScorecard assigns the "Points" column of the scorecard table to
// the bins in order. Bins without a predicate consume a row but produce no
// attribute.
func (sc *Scorecard) encodeScorecard(s *schema.Schema) (*pmml.Scorecard, error) {
	table, err := sc.Object().GetDict("_df_scorecard")
	if err != nil {
		return nil, err
	}
	points, err := store.NewObject("pandas.core.frame", "DataFrame", table.Values).GetNumberArray("Points")
	if err != nil {
		return nil, err
	}
	intercept, err := sc.Object().GetNumber("intercept_")
	if err != nil {
		return nil, err
	}

	characteristics := &pmml.Characteristics{}
	index := 0
	for _, f := range s.Features() {
		bf, ok := f.(*schema.BinnedFeature)
		if !ok {
			return nil, errors.NewCapabilityCastError(f.Name(), string(f.OpType())+" feature", "binned feature")
		}
		c := &pmml.Characteristic{Name: bf.Name()}
		for _, bin := range bf.Bins() {
			if index >= len(points) {
				return nil, errors.NewSchemaSizeError(sc.TypeKey(), "Points", index+1, len(points))
			}
			if bin.Predicate != nil {
				c.Attributes = append(c.Attributes, &pmml.Attribute{PartialScore: points[index], Predicate: bin.Predicate})
			}
			index++
		}
		characteristics.Characteristics = append(characteristics.Characteristics, c)
	}
	if err := errors.CheckSize(sc.TypeKey(), "Points", index, len(points)); err != nil {
		return nil, err
	}
	return &pmml.Scorecard{
		ModelBase:       modelgraph.NewModelBase(pmml.MiningFunctionRegression, s.Label()),
		InitialScore:    intercept,
		Characteristics: characteristics,
	}, nil
}

func Register(r *model.Registry) {
	r.Register("optbinning", "OptimalBinning", NewOptimalBinning)
	r.Register("optbinning", "BinningProcess", NewBinningProcess)
	r.Register("optbinning.scorecard", "Scorecard", NewScorecard)
}
