package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Options are per-conversion switches read from configuration.
type Options struct {
	// AllowMissing keeps tree default children even when the estimator
	// was not fitted with missing values.
	AllowMissing bool
	// NumIteration limits LightGBM boosting rounds; 0 means all or
	// best_iteration_.
	NumIteration int
}

// Encoder is the symbol table and de-duplication state of one conversion.
// It is not safe for concurrent use.
type Encoder struct {
	Options Options

	logger log.Logger

	dataFields      []*pmml.DataField
	dataFieldIndex  map[string]*pmml.DataField
	derivedFields   []*pmml.DerivedField
	derivedIndex    map[string]*pmml.DerivedField
	derivedKeys     map[string]string
	defineFunctions []*pmml.DefineFunction
	functionIndex   map[string]*pmml.DefineFunction
	functionKeys    map[string]string

	memory      map[string][]Feature
	importances map[pmml.Model]map[string]float64

	predicates    map[string]pmml.Predicate
	distributions map[string]*pmml.ScoreDistribution
}

// NewEncoder creates an empty conversion context.
func NewEncoder(logger log.Logger) *Encoder {
	if logger == nil {
		logger = log.GetLoggerWithName("encoder")
	}
	return &Encoder{
		logger:         logger,
		dataFieldIndex: map[string]*pmml.DataField{},
		derivedIndex:   map[string]*pmml.DerivedField{},
		derivedKeys:    map[string]string{},
		functionIndex:  map[string]*pmml.DefineFunction{},
		functionKeys:   map[string]string{},
		memory:         map[string][]Feature{},
		importances:    map[pmml.Model]map[string]float64{},
		predicates:     map[string]pmml.Predicate{},
		distributions:  map[string]*pmml.ScoreDistribution{},
	}
}

func (e *Encoder) Logger() log.Logger {
	return e.logger
}

// CreateDataField registers an input or target field. A second call with the
// same name returns the existing field.
func (e *Encoder) CreateDataField(name string, opType pmml.OpType, dataType pmml.DataType, values []string) *pmml.DataField {
	if df, ok := e.dataFieldIndex[name]; ok {
		return df
	}
	df := &pmml.DataField{Name: name, OpType: opType, DataType: dataType, Values: toValues(values)}
	e.dataFields = append(e.dataFields, df)
	e.dataFieldIndex[name] = df
	return df
}

// UpdateDataField refines the type of a data field once a transformer has
// decided it. Unknown names are ignored: the field may be a derived field.
func (e *Encoder) UpdateDataField(name string, opType pmml.OpType, dataType pmml.DataType, values []string) {
	df, ok := e.dataFieldIndex[name]
	if !ok {
		return
	}
	df.OpType = opType
	if dataType != "" {
		df.DataType = dataType
	}
	if values != nil {
		df.Values = toValues(values)
	}
}

func toValues(values []string) []*pmml.Value {
	if len(values) == 0 {
		return nil
	}
	out := make([]*pmml.Value, len(values))
	for i, v := range values {
		out[i] = &pmml.Value{Value: v}
	}
	return out
}

func (e *Encoder) DataField(name string) *pmml.DataField {
	return e.dataFieldIndex[name]
}

func (e *Encoder) DataFields() []*pmml.DataField {
	return e.dataFields
}

// RemoveDataField drops a field that no model ended up referencing.
func (e *Encoder) RemoveDataField(name string) {
	if _, ok := e.dataFieldIndex[name]; !ok {
		return
	}
	delete(e.dataFieldIndex, name)
	kept := e.dataFields[:0]
	for _, df := range e.dataFields {
		if df.Name != name {
			kept = append(kept, df)
		}
	}
	e.dataFields = kept
}

// CreateDerivedField registers a global derived field. Registering the same
// name with identical content returns the existing field; different content
// under the same name is an error.
func (e *Encoder) CreateDerivedField(name string, opType pmml.OpType, dataType pmml.DataType, expr pmml.Expression) (*pmml.DerivedField, error) {
	df := &pmml.DerivedField{Name: name, OpType: opType, DataType: dataType, Expression: expr}
	key, err := contentKey(df)
	if err != nil {
		return nil, err
	}
	if existing, ok := e.derivedIndex[name]; ok {
		if e.derivedKeys[name] != key {
			return nil, errors.NewValueError("CreateDerivedField", fmt.Sprintf("field %q is already defined with different content", name))
		}
		return existing, nil
	}
	if _, ok := e.dataFieldIndex[name]; ok {
		return nil, errors.NewValueError("CreateDerivedField", fmt.Sprintf("field %q is already defined as a data field", name))
	}
	e.derivedFields = append(e.derivedFields, df)
	e.derivedIndex[name] = df
	e.derivedKeys[name] = key
	return df, nil
}

func (e *Encoder) DerivedField(name string) *pmml.DerivedField {
	return e.derivedIndex[name]
}

func (e *Encoder) DerivedFields() []*pmml.DerivedField {
	return e.derivedFields
}

// DefineFunction registers fn and returns the registered function. A
// function of the same name and content is shared; different content under
// the same name is an error.
func (e *Encoder) DefineFunction(fn *pmml.DefineFunction) (*pmml.DefineFunction, error) {
	key, err := contentKey(fn)
	if err != nil {
		return nil, err
	}
	if existing, ok := e.functionIndex[fn.Name]; ok {
		if e.functionKeys[fn.Name] != key {
			return nil, errors.NewValueError("DefineFunction", fmt.Sprintf("function %q is already defined with different content", fn.Name))
		}
		return existing, nil
	}
	e.defineFunctions = append(e.defineFunctions, fn)
	e.functionIndex[fn.Name] = fn
	e.functionKeys[fn.Name] = key
	return fn, nil
}

func (e *Encoder) HasDefineFunction(name string) bool {
	_, ok := e.functionIndex[name]
	return ok
}

func (e *Encoder) DefineFunctions() []*pmml.DefineFunction {
	return e.defineFunctions
}

// Memorize stores features under a cross-reference name.
func (e *Encoder) Memorize(name string, features []Feature) {
	e.memory[name] = features
}

// Recall returns features stored by Memorize.
func (e *Encoder) Recall(name string) ([]Feature, error) {
	features, ok := e.memory[name]
	if !ok {
		return nil, errors.NewValueError("Recall", fmt.Sprintf("nothing memorized under %q", name))
	}
	return features, nil
}

// AddFeatureImportance records the importance of a feature for model. It is
// applied to the model's mining field when the document is assembled.
func (e *Encoder) AddFeatureImportance(model pmml.Model, feature Feature, importance float64) {
	byName, ok := e.importances[model]
	if !ok {
		byName = map[string]float64{}
		e.importances[model] = byName
	}
	byName[feature.Name()] += importance
}

// FeatureImportances returns the importances recorded for model.
func (e *Encoder) FeatureImportances(model pmml.Model) map[string]float64 {
	return e.importances[model]
}

// InternPredicate returns a shared instance for structurally equal predicates.
func (e *Encoder) InternPredicate(p pmml.Predicate) pmml.Predicate {
	key, err := contentKey(p)
	if err != nil {
		return p
	}
	if existing, ok := e.predicates[key]; ok {
		return existing
	}
	e.predicates[key] = p
	return p
}

// InternScoreDistribution returns a shared instance for equal distributions.
func (e *Encoder) InternScoreDistribution(value string, recordCount float64, probability *float64) *pmml.ScoreDistribution {
	key := value + "|" + pmml.FormatNumber(recordCount)
	if probability != nil {
		key += "|" + pmml.FormatNumber(*probability)
	}
	if existing, ok := e.distributions[key]; ok {
		return existing
	}
	sd := &pmml.ScoreDistribution{Value: value, RecordCount: recordCount, Probability: probability}
	e.distributions[key] = sd
	return sd
}

func contentKey(v any) (string, error) {
	var buf bytes.Buffer
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return "", errors.Wrap(err, "encode content key")
	}
	return buf.String(), nil
}
