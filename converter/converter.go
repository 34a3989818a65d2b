// Package converter turns decoded estimator dumps into PMML documents.
//
// A conversion constructs the root estimator from the registry, builds its
// label and input features, encodes the model graph, completes the mining
// schemas and assembles the document dictionaries:
//
//	c := converter.New(converter.WithOptions(cfg.Options()))
//	obj, err := store.Open("model.json.zst")
//	...
//	doc, err := c.Convert(obj)
//	...
//	err = pmml.Marshal(os.Stdout, doc)
//
// Conversions share nothing mutable; ConvertAll runs several in parallel.
package converter

import (
	"fmt"
	"strings"
	"time"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/core/version"
	"github.com/YuminosukeSato/skpmml/pkg/config"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pkg/metrics"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Application is the name written to the PMML header.
const Application = "skpmml"

// Version is the converter release, set at link time.
var Version = "dev"

// Converter holds the settings shared by conversions.
type Converter struct {
	registry *model.Registry
	options  schema.Options
	header   config.HeaderConfig
	logger   log.Logger
	metrics  *metrics.Metrics
	workers  int
	warn     func(error)
	now      func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithRegistry replaces the registry of every supported estimator.
func WithRegistry(r *model.Registry) Option {
	return func(c *Converter) {
		c.registry = r
	}
}

// WithOptions sets the encoder switches.
func WithOptions(options schema.Options) Option {
	return func(c *Converter) {
		c.options = options
	}
}

// WithHeader sets the PMML header fields.
func WithHeader(header config.HeaderConfig) Option {
	return func(c *Converter) {
		c.header = header
	}
}

func WithLogger(logger log.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithMetrics records every conversion on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// WithWorkers caps the parallelism of ConvertAll; 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.workers = n
	}
}

// WithWarningHandler receives the warnings of this converter's conversions
// instead of the process-wide errors.Warn.
func WithWarningHandler(warn func(error)) Option {
	return func(c *Converter) {
		c.warn = warn
	}
}

// New creates a converter over NewRegistry with the default settings of
// config.Default.
func New(opts ...Option) *Converter {
	c := &Converter{
		header: config.Default().Header,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("converter")
	}
	if c.warn == nil {
		c.warn = errors.Warn
	}
	return c
}

// Registry returns the registry estimators are constructed from.
func (c *Converter) Registry() *model.Registry {
	return c.registry
}

// Convert encodes the estimator obj as a PMML document. Panics raised by
// encoders are returned as *errors.PanicError.
func (c *Converter) Convert(obj *store.Object) (doc *pmml.PMML, err error) {
	start := time.Now()
	kind := ""
	defer func() {
		c.metrics.Observe(kind, err, time.Since(start))
	}()
	defer errors.Recover(&err, "Convert")

	logger := c.logger.With(log.EstimatorKey, obj.TypeKey())
	c.checkVersion(obj)

	e, err := c.registry.AsEstimator(obj)
	if err != nil {
		return nil, err
	}
	kind = e.Kind().String()

	enc := schema.NewEncoder(logger)
	enc.Options = c.options

	active, targets, err := declaredFields(e)
	if err != nil {
		return nil, err
	}
	label, err := model.EncodeLabel(e, targets, enc)
	if err != nil {
		return nil, err
	}
	features, err := model.InitialFeatures(e, active, enc)
	if err != nil {
		return nil, err
	}
	m, err := model.Encode(e, schema.New(enc, label, features))
	if err != nil {
		return nil, err
	}

	doc = c.assemble(m, enc)
	logger.Debug("Converted estimator",
		log.ModelKey, modelType(m),
		log.FeaturesKey, len(features),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// declaredFields reads the input and target names a PMMLPipeline declares.
func declaredFields(e model.Estimator) (active, targets []string, err error) {
	if h, ok := e.(model.HasActiveFields); ok {
		if active, err = h.ActiveFields(); err != nil {
			return nil, nil, err
		}
	}
	if h, ok := e.(model.HasTargetFields); ok {
		if targets, err = h.TargetFields(); err != nil {
			return nil, nil, err
		}
	}
	return active, targets, nil
}

// checkVersion warns about dumps pickled by an untested scikit-learn release.
func (c *Converter) checkVersion(obj *store.Object) {
	s, ok := obj.GetOptional("_sklearn_version").(string)
	if !ok || s == "" {
		return
	}
	v, err := version.Parse(s)
	if err != nil || !version.InSupportedRange(v) {
		c.warn(errors.NewVersionWarning(obj.TypeKey(), s, version.SupportedRange))
	}
}

// assemble completes the mining schemas of m and wraps it in a document
// holding exactly the data fields, derived fields and functions m uses.
func (c *Converter) assemble(m pmml.Model, enc *schema.Encoder) *pmml.PMML {
	usage := modelgraph.Complete(m, enc)

	dict := &pmml.DataDictionary{}
	for _, name := range usage.DataFields {
		dict.DataFields = append(dict.DataFields, enc.DataField(name))
	}
	dict.NumberOfFields = len(dict.DataFields)

	doc := pmml.NewPMML(c.newHeader(), dict)
	var derived []*pmml.DerivedField
	for _, df := range enc.DerivedFields() {
		if usage.DerivedFields[df.Name] {
			derived = append(derived, df)
		}
	}
	if functions := enc.DefineFunctions(); len(functions) > 0 || len(derived) > 0 {
		doc.TransformationDictionary = &pmml.TransformationDictionary{
			DefineFunctions: functions,
			DerivedFields:   derived,
		}
	}
	doc.Models = []pmml.Model{m}
	return doc
}

func (c *Converter) newHeader() *pmml.Header {
	h := &pmml.Header{
		Copyright:   c.header.Copyright,
		Description: c.header.Description,
		Application: &pmml.Application{Name: Application, Version: Version},
	}
	if c.header.Timestamp {
		h.Timestamp = c.now().UTC().Format(time.RFC3339)
	}
	return h
}

func modelType(m pmml.Model) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", m), "*pmml.")
}
